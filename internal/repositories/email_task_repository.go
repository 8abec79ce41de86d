package repositories

import (
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var ErrEmailTaskNotFound = errors.New("email task not found")

type EmailTaskRepository interface {
	Create(db *gorm.DB, task *models.EmailTask) error
	FindByID(db *gorm.DB, id string) (*models.EmailTask, error)
	MarkAttempt(db *gorm.DB, id string, attempts int, lastErr string) error
	MarkSent(db *gorm.DB, id string, attempts int, at time.Time) error
	MarkFailed(db *gorm.DB, id string, attempts int, lastErr string, at time.Time) error
	DeleteOlderThan(db *gorm.DB, cutoff time.Time) (int64, error)
}

type emailTaskRepository struct{}

func NewEmailTaskRepository() EmailTaskRepository {
	return &emailTaskRepository{}
}

func (r *emailTaskRepository) Create(db *gorm.DB, task *models.EmailTask) error {
	return db.Create(task).Error
}

func (r *emailTaskRepository) FindByID(db *gorm.DB, id string) (*models.EmailTask, error) {
	var task models.EmailTask
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *emailTaskRepository) update(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.EmailTask{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmailTaskNotFound
	}
	return nil
}

// MarkAttempt records a failed run that will be retried.
func (r *emailTaskRepository) MarkAttempt(db *gorm.DB, id string, attempts int, lastErr string) error {
	return r.update(db, id, map[string]interface{}{
		"attempts":   attempts,
		"last_error": lastErr,
	})
}

func (r *emailTaskRepository) MarkSent(db *gorm.DB, id string, attempts int, at time.Time) error {
	return r.update(db, id, map[string]interface{}{
		"status":       models.EmailTaskSent,
		"attempts":     attempts,
		"completed_at": at,
	})
}

func (r *emailTaskRepository) MarkFailed(db *gorm.DB, id string, attempts int, lastErr string, at time.Time) error {
	return r.update(db, id, map[string]interface{}{
		"status":       models.EmailTaskFailed,
		"attempts":     attempts,
		"last_error":   lastErr,
		"completed_at": at,
	})
}

func (r *emailTaskRepository) DeleteOlderThan(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("created_at < ?", cutoff).Delete(&models.EmailTask{})
	return result.RowsAffected, result.Error
}
