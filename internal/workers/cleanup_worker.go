package workers

import (
	"context"
	"time"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/repositories"

	"gorm.io/gorm"
)

// CleanupWorker purges old email task records and expired refresh tokens.
type CleanupWorker struct {
	db       *gorm.DB
	tasks    repositories.EmailTaskRepository
	tokens   repositories.RefreshTokenRepository
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
}

func NewCleanupWorker(db *gorm.DB, interval, ttl time.Duration) *CleanupWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &CleanupWorker{
		db:       db,
		tasks:    repositories.NewEmailTaskRepository(),
		tokens:   repositories.NewRefreshTokenRepository(),
		interval: interval,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *CleanupWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Cleanup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs one cleanup pass and returns the number of email
// tasks removed.
func (w *CleanupWorker) RunOnce(ctx context.Context) int64 {
	db := w.db.WithContext(ctx)
	now := w.now()

	deleted, err := w.tasks.DeleteOlderThan(db, now.Add(-w.ttl))
	logger.WorkerLog("cleanup", "email_tasks", err, "deleted", deleted)

	expired, err := w.tokens.DeleteExpired(db, now)
	logger.WorkerLog("cleanup", "refresh_tokens", err, "deleted", expired)

	return deleted
}
