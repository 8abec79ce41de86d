package notifications

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"jobboard_backend/internal/logger"
)

// MemoryBroker is an in-process broker backed by a buffered channel.
// Tasks do not survive a restart.
type MemoryBroker struct {
	items  chan Task
	done   chan struct{}
	closed int32

	mu     sync.Mutex
	timers map[*time.Timer]Task
}

func NewMemoryBroker(capacity int) *MemoryBroker {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryBroker{
		items:  make(chan Task, capacity),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]Task),
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, task Task) error {
	if atomic.LoadInt32(&b.closed) == 1 {
		return ErrBrokerClosed
	}
	select {
	case b.items <- task:
		return nil
	case <-b.done:
		return ErrBrokerClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (b *MemoryBroker) PublishAfter(ctx context.Context, task Task, delay time.Duration) error {
	if delay <= 0 {
		return b.Publish(ctx, task)
	}
	if atomic.LoadInt32(&b.closed) == 1 {
		return ErrBrokerClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		b.mu.Lock()
		delete(b.timers, timer)
		b.mu.Unlock()
		b.publishDue(task)
	})
	b.timers[timer] = task
	return nil
}

// publishDue waits for room in the queue. A delayed task is only dropped
// when the broker closes first.
func (b *MemoryBroker) publishDue(task Task) {
	select {
	case b.items <- task:
		return
	default:
	}
	logger.Warn("Memory broker queue full, waiting to publish delayed task",
		"task_id", task.ID, "capacity", cap(b.items))

	select {
	case b.items <- task:
	case <-b.done:
		logger.Error("Delayed task dropped, broker closed",
			"task_id", task.ID, "kind", task.Kind, "attempt", task.Attempt)
	}
}

func (b *MemoryBroker) Consume(ctx context.Context) (Task, error) {
	select {
	case task := <-b.items:
		return task, nil
	case <-b.done:
		return Task{}, ErrBrokerClosed
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Len reports the number of tasks ready to consume.
func (b *MemoryBroker) Len() int {
	return len(b.items)
}

// Drain removes every task the broker still holds, buffered or delayed,
// and stops the pending delayed publishes.
func (b *MemoryBroker) Drain() []Task {
	var out []Task

	b.mu.Lock()
	for timer, task := range b.timers {
		if timer.Stop() {
			out = append(out, task)
		}
	}
	b.timers = make(map[*time.Timer]Task)
	b.mu.Unlock()

	for {
		select {
		case task := <-b.items:
			out = append(out, task)
		default:
			return out
		}
	}
}

// Close stops pending delayed publishes. Tasks still buffered are dropped;
// call Drain first to keep them.
func (b *MemoryBroker) Close() error {
	if !atomic.CompareAndSwapInt32(&b.closed, 0, 1) {
		return nil
	}
	close(b.done)

	b.mu.Lock()
	for timer := range b.timers {
		timer.Stop()
	}
	b.timers = make(map[*time.Timer]Task)
	b.mu.Unlock()
	return nil
}
