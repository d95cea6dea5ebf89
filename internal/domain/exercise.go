package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/events"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/observability"
)

// MaxDuration is the largest duration every backend can store.
const MaxDuration = math.MaxInt32

// CreateExerciseInput captures the payload from the API layer. A nil Date
// means "today".
type CreateExerciseInput struct {
	UserID      string
	Description string
	Duration    int
	Date        *time.Time
}

// LoggedExercise pairs a stored exercise with its owner.
type LoggedExercise struct {
	User     User
	Exercise Exercise
}

// ExerciseLog is a user's filtered exercise history.
type ExerciseLog struct {
	User      User
	Exercises []Exercise
}

// ExerciseStore appends and queries exercises. Owner checks are delegated to
// the UserStore.
type ExerciseStore struct {
	users *UserStore
	repo  ExerciseRepository
	opts  options
}

// NewExerciseStore constructs an ExerciseStore.
func NewExerciseStore(users *UserStore, repo ExerciseRepository, opts ...Option) *ExerciseStore {
	return &ExerciseStore{users: users, repo: repo, opts: buildOptions(opts)}
}

// CreateExercise verifies the owner exists and appends a new exercise.
func (s *ExerciseStore) CreateExercise(ctx context.Context, input CreateExerciseInput) (*LoggedExercise, error) {
	if _, err := ParseID(input.UserID); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, validationError("description is required")
	}
	if input.Duration <= 0 || input.Duration > MaxDuration {
		return nil, validationError("duration must be an integer between 1 and %d", MaxDuration)
	}

	user, err := s.users.GetUserByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	date := s.opts.now()
	if input.Date != nil {
		date = *input.Date
	}

	exercise := Exercise{
		ID:          NewID(),
		UserID:      user.ID,
		Description: description,
		Duration:    input.Duration,
		Date:        CalendarDay(date),
	}
	if err := s.repo.InsertExercise(ctx, exercise); err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	observability.RecordExerciseLogged(s.opts.now())

	s.opts.publish(ctx, events.New(events.TypeExerciseLogged, user.ID, s.opts.now(), events.ExerciseLogged{
		ExerciseID:  exercise.ID,
		UserID:      exercise.UserID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
	}))
	return &LoggedExercise{User: *user, Exercise: exercise}, nil
}

// QueryExercises returns the user's exercises within the filter, in insertion
// order. A user with no matching exercises yields an empty slice.
func (s *ExerciseStore) QueryExercises(ctx context.Context, userID string, filter ExerciseFilter) ([]Exercise, error) {
	oid, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	filter, err = normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	exercises, err := s.repo.FindExercises(ctx, oid.Hex(), filter)
	if err != nil {
		return nil, fmt.Errorf("find exercises: %w", err)
	}
	if exercises == nil {
		exercises = []Exercise{}
	}
	observability.RecordLogQuery(len(exercises))
	return exercises, nil
}

// Log resolves the user and returns their filtered exercise history.
func (s *ExerciseStore) Log(ctx context.Context, userID string, filter ExerciseFilter) (*ExerciseLog, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.QueryExercises(ctx, user.ID, filter)
	if err != nil {
		return nil, err
	}
	return &ExerciseLog{User: *user, Exercises: exercises}, nil
}

func normalizeFilter(filter ExerciseFilter) (ExerciseFilter, error) {
	if filter.Limit < 0 {
		return filter, validationError("limit must not be negative")
	}
	if filter.From != nil {
		from := CalendarDay(*filter.From)
		filter.From = &from
	}
	if filter.To != nil {
		to := CalendarDay(*filter.To)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, validationError("from must not be after to")
	}
	return filter, nil
}
