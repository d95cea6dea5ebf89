package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/events"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/observability"
)

// Option configures optional collaborators of the stores.
type Option func(*options)

type options struct {
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time

	publishTimeout time.Duration
}

// DefaultPublishTimeout bounds a single event publish.
const DefaultPublishTimeout = 3 * time.Second

func buildOptions(opts []Option) options {
	o := options{
		publisher: events.NoopPublisher{},
		logger:    zerolog.Nop(),
		now:       time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPublisher sets the publisher notified after successful writes.
func WithPublisher(publisher events.Publisher) Option {
	return func(o *options) {
		if publisher != nil {
			o.publisher = publisher
		}
	}
}

// WithLogger overrides the logger used to report publish failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the clock used for default exercise dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPublishTimeout overrides how long a write waits for its event to be
// published.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.publishTimeout = timeout
		}
	}
}

// publish delivers event on a best-effort basis. The write it describes has
// already been committed, so a failure is logged and counted only. The
// publish outlives request cancellation but not publishTimeout.
func (o options) publish(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.publishTimeout)
	defer cancel()

	if err := o.publisher.Publish(ctx, event); err != nil {
		observability.RecordPublishFailure(event.Type)
		o.logger.Warn().Err(err).
			Str("event_type", event.Type).
			Str("event_id", event.ID).
			Msg("event publish failed")
	}
}
