package services

import (
	"context"
	"errors"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService records email tasks and hands them to the broker.
// Callers enqueue after their transaction has committed.
type NotificationService interface {
	Enqueue(ctx context.Context, db *gorm.DB, task notifications.Task) (*models.EmailTask, error)
	// ApplicationCreated queues the candidate confirmation and the employer
	// notice. Failures are logged, never returned.
	ApplicationCreated(ctx context.Context, db *gorm.DB, app *models.Application)
	StatusChanged(ctx context.Context, db *gorm.DB, app *models.Application, oldStatus, newStatus models.ApplicationStatus)
	Bulk(ctx context.Context, db *gorm.DB, actor *auth.Actor, req *dto.BulkNotifyRequest) (*dto.BulkNotifyResponse, error)
}

type notificationService struct {
	broker          notifications.Broker
	emailTaskRepo   repositories.EmailTaskRepository
	applicationRepo repositories.ApplicationRepository
	now             func() time.Time
}

func NewNotificationService(
	broker notifications.Broker,
	emailTaskRepo repositories.EmailTaskRepository,
	applicationRepo repositories.ApplicationRepository,
) NotificationService {
	return &notificationService{
		broker:          broker,
		emailTaskRepo:   emailTaskRepo,
		applicationRepo: applicationRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) Enqueue(ctx context.Context, db *gorm.DB, task notifications.Task) (*models.EmailTask, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.EnqueuedAt = s.now()

	payload, err := task.Encode()
	if err != nil {
		return nil, err
	}

	record := &models.EmailTask{
		BaseModel:     models.BaseModel{ID: task.ID},
		Kind:          task.Kind,
		ApplicationID: task.ApplicationID,
		Payload:       datatypes.JSON(payload),
		Status:        models.EmailTaskQueued,
	}
	if err := s.emailTaskRepo.Create(db, record); err != nil {
		return nil, err
	}

	if err := s.broker.Publish(ctx, task); err != nil {
		if markErr := s.emailTaskRepo.MarkFailed(db, record.ID, 0, err.Error(), s.now()); markErr != nil {
			logger.CtxError(ctx, "failed to record publish failure", "task_id", record.ID, "error", markErr)
		}
		return nil, err
	}

	logger.CtxDebug(ctx, "email task queued", "task_id", record.ID, "kind", task.Kind, "application_id", task.ApplicationID)
	return record, nil
}

func (s *notificationService) enqueueLogged(ctx context.Context, db *gorm.DB, task notifications.Task) {
	if _, err := s.Enqueue(ctx, db, task); err != nil {
		logger.CtxError(ctx, "failed to enqueue email",
			"kind", task.Kind,
			"application_id", task.ApplicationID,
			"error", err,
		)
	}
}

func (s *notificationService) ApplicationCreated(ctx context.Context, db *gorm.DB, app *models.Application) {
	s.enqueueLogged(ctx, db, notifications.Task{Kind: models.EmailKindConfirmation, ApplicationID: app.ID})
	s.enqueueLogged(ctx, db, notifications.Task{Kind: models.EmailKindNewApplication, ApplicationID: app.ID})
}

func (s *notificationService) StatusChanged(ctx context.Context, db *gorm.DB, app *models.Application, oldStatus, newStatus models.ApplicationStatus) {
	if oldStatus == newStatus {
		return
	}
	s.enqueueLogged(ctx, db, notifications.Task{
		Kind:          models.EmailKindStatusUpdate,
		ApplicationID: app.ID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
	})
}

func (s *notificationService) Bulk(ctx context.Context, db *gorm.DB, actor *auth.Actor, req *dto.BulkNotifyRequest) (*dto.BulkNotifyResponse, error) {
	if !auth.IsAdmin(actor) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	kind := models.EmailKindConfirmation
	if req.EmailType == dto.EmailTypeEmployerNotification {
		kind = models.EmailKindNewApplication
	}

	resp := &dto.BulkNotifyResponse{Results: make([]dto.BulkNotifyResult, 0, len(req.ApplicationIDs))}
	for _, id := range req.ApplicationIDs {
		result := dto.BulkNotifyResult{ApplicationID: id}

		if _, err := s.applicationRepo.FindByID(db, id); err != nil {
			result.Status = "failed"
			if errors.Is(err, repositories.ErrApplicationNotFound) {
				result.Error = "Application not found"
			} else {
				result.Error = err.Error()
			}
			resp.Results = append(resp.Results, result)
			continue
		}

		record, err := s.Enqueue(ctx, db, notifications.Task{Kind: kind, ApplicationID: id})
		if err != nil {
			result.Status = "failed"
			result.Error = err.Error()
		} else {
			result.Status = "queued"
			result.TaskID = record.ID
		}
		resp.Results = append(resp.Results, result)
	}

	logger.CtxInfo(ctx, "bulk notifications queued", "count", len(req.ApplicationIDs), "kind", kind, "by", actor.ID)
	return resp, nil
}
