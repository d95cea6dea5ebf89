// Package events defines the notifications emitted after successful writes
// and the publishers that deliver them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeUserCreated    = "user.created"
	TypeExerciseLogged = "exercise.logged"
)

// Event is a single notification. Key groups events for partitioning.
type Event struct {
	ID         string
	Type       string
	Key        string
	OccurredAt time.Time
	Payload    any
}

// UserCreated is emitted when a user record is stored.
type UserCreated struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ExerciseLogged is emitted when an exercise is appended to a user's log.
type ExerciseLogged struct {
	ExerciseID  string    `json:"exercise_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	Date        time.Time `json:"date"`
}

// New builds an Event with a fresh id.
func New(eventType, key string, occurredAt time.Time, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: occurredAt.UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close performs no action.
func (NoopPublisher) Close() error { return nil }
