package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobboard_backend/internal/email"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/repositories"

	"gorm.io/gorm"
)

var (
	// ErrApplicationMissing fails a task without retry.
	ErrApplicationMissing = errors.New("application not found")
	ErrHardTimeLimit      = errors.New("hard time limit exceeded")
)

const requeueTimeout = 5 * time.Second

type EmailWorkerConfig struct {
	Workers       int
	MaxRetries    int
	RetryDelay    time.Duration
	SoftTimeLimit time.Duration
	HardTimeLimit time.Duration
}

func DefaultEmailWorkerConfig() EmailWorkerConfig {
	return EmailWorkerConfig{
		Workers:       4,
		MaxRetries:    3,
		RetryDelay:    60 * time.Second,
		SoftTimeLimit: 5 * time.Minute,
		HardTimeLimit: 10 * time.Minute,
	}
}

// EmailWorker consumes notification tasks and sends the emails.
type EmailWorker struct {
	db       *gorm.DB
	broker   notifications.Broker
	composer *notifications.Composer
	provider email.Provider
	apps     repositories.ApplicationRepository
	tasks    repositories.EmailTaskRepository
	cfg      EmailWorkerConfig
	now      func() time.Time

	wg sync.WaitGroup
}

func NewEmailWorker(
	db *gorm.DB,
	broker notifications.Broker,
	composer *notifications.Composer,
	provider email.Provider,
	cfg EmailWorkerConfig,
) *EmailWorker {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &EmailWorker{
		db:       db,
		broker:   broker,
		composer: composer,
		provider: provider,
		apps:     repositories.NewApplicationRepository(),
		tasks:    repositories.NewEmailTaskRepository(),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the pool. It returns immediately; use Wait after
// cancelling ctx.
func (w *EmailWorker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.loop(ctx, i)
	}
	logger.Info("Email worker pool started", "workers", w.cfg.Workers)
}

func (w *EmailWorker) Wait() {
	w.wg.Wait()
}

func (w *EmailWorker) loop(ctx context.Context, id int) {
	defer w.wg.Done()

	for {
		task, err := w.broker.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, notifications.ErrBrokerClosed) {
				logger.Debug("Email worker stopped", "worker_id", id)
				return
			}
			logger.WorkerLog("email", "consume", err, "worker_id", id)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		_ = w.Handle(ctx, task)
	}
}

// Handle runs one task and records the outcome. Failed runs are
// republished with exponential backoff until MaxRetries is reached.
func (w *EmailWorker) Handle(ctx context.Context, task notifications.Task) error {
	ctx = logger.WithTaskID(ctx, task.ID)
	log := logger.FromContext(ctx).With("kind", task.Kind, "application_id", task.ApplicationID)
	attempts := task.Attempt + 1

	err := w.runWithLimits(ctx, task)
	if err == nil {
		if markErr := w.tasks.MarkSent(w.db, task.ID, attempts, w.now()); markErr != nil {
			log.Warn("Failed to record sent email", "error", markErr)
		}
		log.Info("Email sent", "attempts", attempts)
		return nil
	}

	if ctx.Err() != nil {
		// The attempt did not finish; hand the task back unchanged. ctx is
		// already done, so the publish runs on its own deadline.
		requeueCtx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
		defer cancel()
		if pubErr := w.broker.Publish(requeueCtx, task); pubErr != nil {
			if markErr := w.tasks.MarkFailed(w.db, task.ID, attempts, pubErr.Error(), w.now()); markErr != nil {
				log.Warn("Failed to record failed email", "error", markErr)
			}
			log.Error("Email task lost on shutdown", "error", pubErr)
			return pubErr
		}
		log.Warn("Email task interrupted by shutdown, requeued", "error", err)
		return err
	}

	if errors.Is(err, ErrApplicationMissing) || task.Attempt >= w.cfg.MaxRetries {
		if markErr := w.tasks.MarkFailed(w.db, task.ID, attempts, err.Error(), w.now()); markErr != nil {
			log.Warn("Failed to record failed email", "error", markErr)
		}
		log.Error("Email task failed", "attempts", attempts, "error", err)
		return err
	}

	delay := w.RetryDelay(task.Attempt)
	if markErr := w.tasks.MarkAttempt(w.db, task.ID, attempts, err.Error()); markErr != nil {
		log.Warn("Failed to record email attempt", "error", markErr)
	}

	next := task
	next.Attempt++
	if pubErr := w.broker.PublishAfter(ctx, next, delay); pubErr != nil {
		_ = w.tasks.MarkFailed(w.db, task.ID, attempts, pubErr.Error(), w.now())
		log.Error("Failed to schedule email retry", "error", pubErr)
		return pubErr
	}

	log.Warn("Email task will be retried", "attempt", attempts, "retry_in", delay.String(), "error", err)
	return err
}

// RetryDelay is RetryDelay * 2^retries.
func (w *EmailWorker) RetryDelay(retries int) time.Duration {
	return w.cfg.RetryDelay * time.Duration(1<<uint(retries))
}

// runWithLimits cancels the task context at the soft limit and stops
// waiting for it at the hard limit.
func (w *EmailWorker) runWithLimits(ctx context.Context, task notifications.Task) error {
	softCtx, cancel := context.WithTimeout(ctx, w.cfg.SoftTimeLimit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.process(softCtx, task)
	}()

	hard := time.NewTimer(w.cfg.HardTimeLimit)
	defer hard.Stop()

	select {
	case err := <-done:
		return err
	case <-hard.C:
		return ErrHardTimeLimit
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *EmailWorker) process(ctx context.Context, task notifications.Task) error {
	app, err := w.apps.FindByID(w.db.WithContext(ctx), task.ApplicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return fmt.Errorf("%w: %s", ErrApplicationMissing, task.ApplicationID)
		}
		return fmt.Errorf("load application: %w", err)
	}

	msg, err := w.composer.Compose(task, app)
	if err != nil {
		return fmt.Errorf("compose %s email: %w", task.Kind, err)
	}
	return w.provider.Send(ctx, msg)
}
