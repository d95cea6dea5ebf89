// Package storetest holds a behavioural suite every domain.Store backend must
// pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
)

// Run exercises store against the repository contract. store must be empty.
func Run(t *testing.T, store domain.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing user resolves to nil", func(t *testing.T) {
		user, err := store.FindUserByID(ctx, domain.NewID())
		require.NoError(t, err)
		require.Nil(t, user)
	})

	alice := domain.User{ID: domain.NewID(), Username: "alice"}
	bob := domain.User{ID: domain.NewID(), Username: "bob"}

	t.Run("users round trip in insertion order", func(t *testing.T) {
		require.NoError(t, store.InsertUser(ctx, alice))
		require.NoError(t, store.InsertUser(ctx, bob))

		found, err := store.FindUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Equal(t, alice, *found)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Equal(t, []domain.User{alice, bob}, users)
	})

	day := func(s string) time.Time {
		d, err := time.Parse(domain.DateLayout, s)
		require.NoError(t, err)
		return d
	}

	dates := []string{"2023-12-31", "2024-01-15", "2024-02-01", "2024-01-01", "2024-01-31"}
	var inserted []domain.Exercise
	for i, d := range dates {
		ex := domain.Exercise{
			ID:          domain.NewID(),
			UserID:      alice.ID,
			Description: "run",
			Duration:    10 * (i + 1),
			Date:        day(d),
		}
		require.NoError(t, store.InsertExercise(ctx, ex))
		inserted = append(inserted, ex)
	}
	require.NoError(t, store.InsertExercise(ctx, domain.Exercise{
		ID:          domain.NewID(),
		UserID:      bob.ID,
		Description: "swim",
		Duration:    45,
		Date:        day("2024-01-15"),
	}))

	t.Run("unfiltered returns every exercise in insertion order", func(t *testing.T) {
		got, err := store.FindExercises(ctx, alice.ID, domain.ExerciseFilter{})
		require.NoError(t, err)
		require.Equal(t, inserted, got)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		from, to := day("2024-01-01"), day("2024-01-31")
		got, err := store.FindExercises(ctx, alice.ID, domain.ExerciseFilter{From: &from, To: &to})
		require.NoError(t, err)
		require.Equal(t, []domain.Exercise{inserted[1], inserted[3], inserted[4]}, got)
	})

	t.Run("limit applies after filtering", func(t *testing.T) {
		from := day("2024-01-01")
		got, err := store.FindExercises(ctx, alice.ID, domain.ExerciseFilter{From: &from, Limit: 2})
		require.NoError(t, err)
		require.Equal(t, []domain.Exercise{inserted[1], inserted[2]}, got)
	})

	t.Run("no matches yields empty result", func(t *testing.T) {
		from := day("2030-01-01")
		got, err := store.FindExercises(ctx, alice.ID, domain.ExerciseFilter{From: &from})
		require.NoError(t, err)
		require.Empty(t, got)

		got, err = store.FindExercises(ctx, domain.NewID(), domain.ExerciseFilter{})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("largest duration round trips", func(t *testing.T) {
		carol := domain.User{ID: domain.NewID(), Username: "carol"}
		require.NoError(t, store.InsertUser(ctx, carol))

		ex := domain.Exercise{
			ID:          domain.NewID(),
			UserID:      carol.ID,
			Description: "ultra",
			Duration:    domain.MaxDuration,
			Date:        day("2024-03-01"),
		}
		require.NoError(t, store.InsertExercise(ctx, ex))

		got, err := store.FindExercises(ctx, carol.ID, domain.ExerciseFilter{})
		require.NoError(t, err)
		require.Equal(t, []domain.Exercise{ex}, got)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, store.Ping(ctx))
	})
}
