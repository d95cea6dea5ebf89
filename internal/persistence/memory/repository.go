// Package memory provides an in-process store for local development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
)

// Repository stores users and exercises in memory.
type Repository struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	order     []string
	exercises map[string][]domain.Exercise
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{
		users:     make(map[string]domain.User),
		exercises: make(map[string][]domain.Exercise),
	}
}

// InsertUser implements domain.UserRepository.
func (r *Repository) InsertUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	r.order = append(r.order, user.ID)
	return nil
}

// FindUserByID implements domain.UserRepository.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}

// InsertExercise implements domain.ExerciseRepository.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exercises[exercise.UserID] = append(r.exercises[exercise.UserID], exercise)
	return nil
}

// FindExercises implements domain.ExerciseRepository.
func (r *Repository) FindExercises(ctx context.Context, userID string, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Exercise, 0)
	for _, exercise := range r.exercises[userID] {
		if filter.From != nil && exercise.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && exercise.Date.After(*filter.To) {
			continue
		}
		out = append(out, exercise)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error { return nil }

// Close is a no-op.
func (r *Repository) Close(context.Context) error { return nil }
