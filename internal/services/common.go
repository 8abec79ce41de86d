package services

import (
	"context"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"

	"gorm.io/gorm"
)

// DefaultPageSize is used when the caller passes no page size.
const DefaultPageSize = 50

func pageOf(number, size int) repositories.Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return repositories.Page{Number: number, Size: size}
}

func newPage[T any](items []T, total int64, page repositories.Page) *dto.Page[T] {
	return &dto.Page[T]{Items: items, Total: total, Number: page.Number, PageSize: page.Size}
}

func contextOf(db *gorm.DB) context.Context {
	if db.Statement != nil && db.Statement.Context != nil {
		return db.Statement.Context
	}
	return context.Background()
}

// fileURLs resolves storage keys to links. A key that cannot be resolved
// is rendered as null.
func fileURLs(ctx context.Context, store storage.Storage) dto.URLResolver {
	if store == nil {
		return nil
	}
	return func(key string) string {
		url, err := store.URL(ctx, key)
		if err != nil {
			logger.CtxWarn(ctx, "failed to resolve file url", "key", key, "error", err)
			return ""
		}
		return url
	}
}
