package notifications

import (
	"context"
	"time"
)

// Broker is the task queue between request handlers and email workers.
type Broker interface {
	// Publish makes the task available to consumers immediately.
	Publish(ctx context.Context, task Task) error
	// PublishAfter makes the task available once delay has passed.
	PublishAfter(ctx context.Context, task Task, delay time.Duration) error
	// Consume blocks until a task is available, ctx is done or the broker
	// is closed.
	Consume(ctx context.Context) (Task, error)
	Close() error
}
