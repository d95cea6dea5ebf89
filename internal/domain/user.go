// Package domain implements the user and exercise stores.
package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/events"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/observability"
)

// UserStore creates and resolves users.
type UserStore struct {
	repo UserRepository
	opts options
}

// NewUserStore constructs a UserStore.
func NewUserStore(repo UserRepository, opts ...Option) *UserStore {
	return &UserStore{repo: repo, opts: buildOptions(opts)}
}

// CreateUser persists a new user with a fresh identifier.
func (s *UserStore) CreateUser(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, validationError("username is required")
	}

	user := User{ID: NewID(), Username: username}
	if err := s.repo.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	observability.RecordUserCreated()

	s.opts.publish(ctx, events.New(events.TypeUserCreated, user.ID, s.opts.now(), events.UserCreated{
		UserID:   user.ID,
		Username: user.Username,
	}))
	return &user, nil
}

// GetUserByID resolves a user. It fails with ErrInvalidID for malformed ids
// and ErrUserNotFound when nothing is stored under id.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByID(ctx, oid.Hex())
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns every user in insertion order.
func (s *UserStore) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}
