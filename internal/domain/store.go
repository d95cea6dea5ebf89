package domain

import (
	"context"
	"time"
)

// User is a person whose exercises are tracked.
type User struct {
	ID       string
	Username string
}

// Exercise is a single logged workout entry. Date is a calendar day at
// midnight UTC.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    int
	Date        time.Time
}

// ExerciseFilter narrows a user's exercises. Nil bounds are open; both bounds
// are inclusive calendar days. Limit <= 0 means unbounded and applies after
// the date filter.
type ExerciseFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// UserRepository persists users. FindUserByID returns (nil, nil) when the id
// does not resolve.
type UserRepository interface {
	InsertUser(ctx context.Context, user User) error
	FindUserByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// ExerciseRepository persists exercises. FindExercises returns matches in
// insertion order.
type ExerciseRepository interface {
	InsertExercise(ctx context.Context, exercise Exercise) error
	FindExercises(ctx context.Context, userID string, filter ExerciseFilter) ([]Exercise, error)
}

// Store is a complete backend: both repositories plus lifecycle hooks.
type Store interface {
	UserRepository
	ExerciseRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
