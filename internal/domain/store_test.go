package domain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/events"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/persistence/memory"
)

var fixedNow = time.Date(2024, time.March, 5, 23, 45, 0, 0, time.UTC)

type fixture struct {
	users     *domain.UserStore
	exercises *domain.ExerciseStore
}

func newFixture(t *testing.T, opts ...domain.Option) fixture {
	t.Helper()
	repo := memory.NewRepository()
	opts = append([]domain.Option{domain.WithClock(func() time.Time { return fixedNow })}, opts...)
	users := domain.NewUserStore(repo, opts...)
	return fixture{
		users:     users,
		exercises: domain.NewExerciseStore(users, repo, opts...),
	}
}

func day(t *testing.T, raw string) *time.Time {
	t.Helper()
	d, err := domain.ParseDate(raw)
	require.NoError(t, err)
	return &d
}

func TestCreateUserAssignsUniqueIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)
	second, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	require.Equal(t, "alice", first.Username)
	require.NotEqual(t, first.ID, second.ID)

	got, err := f.users.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, *first, *got)
}

func TestCreateUserRejectsEmptyUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"", "   "} {
		_, err := f.users.CreateUser(ctx, name)
		require.ErrorIs(t, err, domain.ErrValidation)
	}

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestGetUserByIDErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.GetUserByID(ctx, "not-hex")
	require.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.users.GetUserByID(ctx, domain.NewID())
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsersInInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)

	var want []domain.User
	for _, name := range []string{"carol", "alice", "bob"} {
		user, err := f.users.CreateUser(ctx, name)
		require.NoError(t, err)
		want = append(want, *user)
	}

	users, err = f.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, want, users)
}

func TestCreateExerciseDefaultsToToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	logged, err := f.exercises.CreateExercise(ctx, domain.CreateExerciseInput{
		UserID:      user.ID,
		Description: "  run  ",
		Duration:    30,
	})
	require.NoError(t, err)
	require.Equal(t, *user, logged.User)
	require.Equal(t, "run", logged.Exercise.Description)
	require.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), logged.Exercise.Date)

	stored, err := f.exercises.QueryExercises(ctx, user.ID, domain.ExerciseFilter{})
	require.NoError(t, err)
	require.Equal(t, []domain.Exercise{logged.Exercise}, stored)
}

func TestCreateExerciseTruncatesExplicitDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	at := time.Date(2024, time.January, 1, 22, 15, 0, 0, time.UTC)
	logged, err := f.exercises.CreateExercise(ctx, domain.CreateExerciseInput{
		UserID:      user.ID,
		Description: "swim",
		Duration:    45,
		Date:        &at,
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), logged.Exercise.Date)
}

func TestCreateExerciseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input domain.CreateExerciseInput
		want  error
	}{
		{"malformed id", domain.CreateExerciseInput{UserID: "123", Description: "run", Duration: 10}, domain.ErrInvalidID},
		{"unknown user", domain.CreateExerciseInput{UserID: domain.NewID(), Description: "run", Duration: 10}, domain.ErrNotFound},
		{"blank description", domain.CreateExerciseInput{UserID: user.ID, Description: " ", Duration: 10}, domain.ErrValidation},
		{"zero duration", domain.CreateExerciseInput{UserID: user.ID, Description: "run"}, domain.ErrValidation},
		{"negative duration", domain.CreateExerciseInput{UserID: user.ID, Description: "run", Duration: -5}, domain.ErrValidation},
		{"duration too large", domain.CreateExerciseInput{UserID: user.ID, Description: "run", Duration: domain.MaxDuration + 1}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.exercises.CreateExercise(ctx, tt.input)
			require.ErrorIs(t, err, tt.want)
		})
	}

	stored, err := f.exercises.QueryExercises(ctx, user.ID, domain.ExerciseFilter{})
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestQueryExercisesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.users.CreateUser(ctx, "bob")
	require.NoError(t, err)

	dates := []string{"2024-01-01", "2024-01-10", "2024-01-20", "2024-02-01", "2024-02-15"}
	for i, d := range dates {
		_, err := f.exercises.CreateExercise(ctx, domain.CreateExerciseInput{
			UserID: alice.ID, Description: d, Duration: i + 1, Date: day(t, d),
		})
		require.NoError(t, err)
	}
	_, err = f.exercises.CreateExercise(ctx, domain.CreateExerciseInput{
		UserID: bob.ID, Description: "other", Duration: 1, Date: day(t, "2024-01-10"),
	})
	require.NoError(t, err)

	descriptions := func(list []domain.Exercise) []string {
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, e.Description)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.ExerciseFilter
		want   []string
	}{
		{"all", domain.ExerciseFilter{}, dates},
		{"inclusive range", domain.ExerciseFilter{From: day(t, "2024-01-10"), To: day(t, "2024-02-01")}, []string{"2024-01-10", "2024-01-20", "2024-02-01"}},
		{"range as timestamps", domain.ExerciseFilter{From: day(t, "2024-01-10T15:00:00Z"), To: day(t, "2024-02-01T01:00:00Z")}, []string{"2024-01-10", "2024-01-20", "2024-02-01"}},
		{"limit", domain.ExerciseFilter{Limit: 2}, []string{"2024-01-01", "2024-01-10"}},
		{"limit after filter", domain.ExerciseFilter{From: day(t, "2024-01-15"), Limit: 2}, []string{"2024-01-20", "2024-02-01"}},
		{"limit beyond size", domain.ExerciseFilter{Limit: 50}, dates},
		{"no matches", domain.ExerciseFilter{From: day(t, "2025-01-01")}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.exercises.QueryExercises(ctx, alice.ID, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, tt.want, descriptions(got))
		})
	}
}

func TestQueryExercisesRejectsBadFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	_, err = f.exercises.QueryExercises(ctx, user.ID, domain.ExerciseFilter{Limit: -1})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.exercises.QueryExercises(ctx, user.ID, domain.ExerciseFilter{From: day(t, "2024-02-01"), To: day(t, "2024-01-01")})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.exercises.QueryExercises(ctx, "zzz", domain.ExerciseFilter{})
	require.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestQueryExercisesUnknownUserIsEmpty(t *testing.T) {
	f := newFixture(t)

	got, err := f.exercises.QueryExercises(context.Background(), domain.NewID(), domain.ExerciseFilter{})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestLogResolvesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	log, err := f.exercises.Log(ctx, user.ID, domain.ExerciseFilter{})
	require.NoError(t, err)
	require.Equal(t, *user, log.User)
	require.Empty(t, log.Exercises)

	_, err = f.exercises.Log(ctx, domain.NewID(), domain.ExerciseFilter{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoresPublishEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	f := newFixture(t, domain.WithPublisher(publisher))
	ctx := context.Background()

	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)
	logged, err := f.exercises.CreateExercise(ctx, domain.CreateExerciseInput{
		UserID: user.ID, Description: "run", Duration: 30,
	})
	require.NoError(t, err)

	_, err = f.users.CreateUser(ctx, "")
	require.Error(t, err)

	got := publisher.published()
	require.Len(t, got, 2)

	require.Equal(t, events.TypeUserCreated, got[0].Type)
	require.Equal(t, user.ID, got[0].Key)
	require.Equal(t, events.UserCreated{UserID: user.ID, Username: "alice"}, got[0].Payload)

	require.Equal(t, events.TypeExerciseLogged, got[1].Type)
	require.Equal(t, user.ID, got[1].Key)
	payload, ok := got[1].Payload.(events.ExerciseLogged)
	require.True(t, ok)
	require.Equal(t, logged.Exercise.ID, payload.ExerciseID)
	require.Equal(t, 30, payload.Duration)
}

func TestPublishFailureDoesNotFailWrites(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	f := newFixture(t, domain.WithPublisher(publisher))
	ctx := context.Background()

	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)
	_, err = f.exercises.CreateExercise(ctx, domain.CreateExerciseInput{
		UserID: user.ID, Description: "run", Duration: 30,
	})
	require.NoError(t, err)

	stored, err := f.exercises.QueryExercises(ctx, user.ID, domain.ExerciseFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestSlowPublisherCannotStallWrites(t *testing.T) {
	publisher := &blockingPublisher{}
	f := newFixture(t, domain.WithPublisher(publisher), domain.WithPublishTimeout(50*time.Millisecond))
	ctx := context.Background()

	start := time.Now()
	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)
	_, err = f.exercises.CreateExercise(ctx, domain.CreateExerciseInput{
		UserID: user.ID, Description: "run", Duration: 30,
	})
	require.NoError(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, 2, publisher.calls())

	stored, err := f.exercises.QueryExercises(ctx, user.ID, domain.ExerciseFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestPublishOutlivesRequestCancellation(t *testing.T) {
	publisher := &recordingPublisher{}
	f := newFixture(t, domain.WithPublisher(publisher))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	user, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	got := publisher.published()
	require.Len(t, got, 1)
	require.Equal(t, user.ID, got[0].Key)
	require.NoError(t, publisher.lastCtxErr)
}

// blockingPublisher never delivers; it returns once ctx is done.
type blockingPublisher struct {
	mu sync.Mutex
	n  int
}

func (p *blockingPublisher) Publish(ctx context.Context, _ events.Event) error {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (p *blockingPublisher) Close() error { return nil }

func (p *blockingPublisher) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

type recordingPublisher struct {
	mu   sync.Mutex
	seen []events.Event
	err  error

	lastCtxErr error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, event)
	p.lastCtxErr = ctx.Err()
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.seen...)
}
