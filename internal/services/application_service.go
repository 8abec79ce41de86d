package services

import (
	"context"
	"errors"
	"fmt"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	msgOwnJob          = "You cannot apply to your own job posting."
	msgJobInactive     = "This job posting is no longer active."
	msgAlreadyApplied  = "You have already applied to this job."
	msgRejectedIsFinal = "Cannot change status of rejected application."
)

type ApplicationService interface {
	List(db *gorm.DB, actor *auth.Actor, filter dto.ApplicationFilter) (*dto.Page[dto.ApplicationResponse], error)
	// Get returns 404 for applications outside the actor's scope.
	Get(db *gorm.DB, actor *auth.Actor, applicationID string) (*dto.ApplicationResponse, error)
	Create(ctx context.Context, db *gorm.DB, actor *auth.Actor, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	Update(ctx context.Context, db *gorm.DB, actor *auth.Actor, applicationID string, req *dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, actor *auth.Actor, applicationID string, req *dto.UpdateStatusRequest) (*dto.ApplicationResponse, error)
	Withdraw(db *gorm.DB, actor *auth.Actor, applicationID string) error
	MyApplications(db *gorm.DB, actor *auth.Actor) ([]dto.ApplicationResponse, error)
}

type applicationService struct {
	applicationRepo repositories.ApplicationRepository
	jobRepo         repositories.JobRepository
	notifications   NotificationService
	storage         storage.Storage
	pageSize        int
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	notifications NotificationService,
	store storage.Storage,
	pageSize int,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		notifications:   notifications,
		storage:         store,
		pageSize:        pageSize,
	}
}

// scopeFor limits what an actor can see: admins everything, employers the
// applications to their jobs, candidates their own.
func scopeFor(actor *auth.Actor) repositories.ApplicationScope {
	switch {
	case actor == nil:
		return repositories.ApplicationScope{NoAccess: true}
	case auth.IsAdmin(actor):
		return repositories.ApplicationScope{}
	case auth.IsEmployer(actor):
		return repositories.ApplicationScope{JobPostedByID: actor.ID}
	default:
		return repositories.ApplicationScope{CandidateID: actor.ID}
	}
}

func (s *applicationService) List(db *gorm.DB, actor *auth.Actor, filter dto.ApplicationFilter) (*dto.Page[dto.ApplicationResponse], error) {
	page := pageOf(filter.Page, s.pageSize)
	apps, total, err := s.applicationRepo.List(db, scopeFor(actor), repositories.ApplicationFilter{
		Status:      filter.Status,
		JobID:       filter.JobID,
		CandidateID: filter.CandidateID,
	}, page)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return newPage(dto.NewApplicationList(apps, fileURLs(contextOf(db), s.storage)), total, page), nil
}

func (s *applicationService) find(db *gorm.DB, actor *auth.Actor, applicationID string) (*models.Application, error) {
	app, err := s.applicationRepo.FindInScope(db, applicationID, scopeFor(actor))
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return app, nil
}

func (s *applicationService) respond(db *gorm.DB, actor *auth.Actor, applicationID string) (*dto.ApplicationResponse, error) {
	app, err := s.find(db, actor, applicationID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewApplicationResponse(app, fileURLs(contextOf(db), s.storage))
	return &resp, nil
}

func (s *applicationService) Get(db *gorm.DB, actor *auth.Actor, applicationID string) (*dto.ApplicationResponse, error) {
	return s.respond(db, actor, applicationID)
}

func (s *applicationService) Create(ctx context.Context, db *gorm.DB, actor *auth.Actor, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if !auth.CanApply(actor) {
		return nil, apperrors.NewForbiddenError("Only candidates can apply for jobs.")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.jobRepo.FindByID(tx, req.Job)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.FieldError("job", fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", req.Job))
		}
		return nil, apperrors.InternalError(err)
	}

	switch {
	case job.PostedByID == actor.ID:
		return nil, apperrors.FieldError("job", msgOwnJob)
	case !job.IsActive:
		return nil, apperrors.FieldError("job", msgJobInactive)
	}

	exists, err := s.applicationRepo.Exists(tx, job.ID, actor.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.FieldError("job", msgAlreadyApplied)
	}

	app := &models.Application{
		JobID:       job.ID,
		CandidateID: actor.ID,
		CoverLetter: req.CoverLetter,
		Status:      models.ApplicationStatusApplied,
	}
	if err := s.applicationRepo.Create(tx, app); err != nil {
		if errors.Is(err, repositories.ErrApplicationExists) {
			return nil, apperrors.FieldError("job", msgAlreadyApplied)
		}
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "application submitted", "application_id", app.ID, "job_id", job.ID, "candidate_id", actor.ID)
	s.notifications.ApplicationCreated(ctx, db, app)

	return s.respond(db, actor, app.ID)
}

// changeStatus validates and stores a status change inside tx. It returns
// the previous status.
func (s *applicationService) changeStatus(tx *gorm.DB, app *models.Application, next models.ApplicationStatus) (models.ApplicationStatus, error) {
	prev := app.Status
	if !next.IsValid() {
		return prev, apperrors.ErrInvalidStatus("application", fmt.Sprintf("\"%s\" is not a valid choice.", next))
	}
	if !prev.CanTransitionTo(next) {
		return prev, apperrors.ErrInvalidStatus("application", msgRejectedIsFinal)
	}
	if prev == next {
		return prev, nil
	}
	if !prev.IsForward(next) {
		logger.CtxWarn(contextOf(tx), "application status moved backwards",
			"application_id", app.ID,
			"from", prev,
			"to", next,
		)
	}

	if err := s.applicationRepo.UpdateFields(tx, app.ID, map[string]interface{}{"status": next}); err != nil {
		return prev, apperrors.InternalError(err)
	}
	app.Status = next
	return prev, nil
}

func (s *applicationService) Update(ctx context.Context, db *gorm.DB, actor *auth.Actor, applicationID string, req *dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	app, err := s.find(tx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	employer := auth.CanUpdateApplicationStatus(actor, &app.Job)
	if !auth.CanEditApplication(actor, app, &app.Job) {
		if auth.IsCandidate(actor) && app.CandidateID == actor.ID {
			return nil, apperrors.NewForbiddenError("You can only update applications that haven't been reviewed yet.")
		}
		return nil, apperrors.NewForbiddenError("You can only update applications for your own job postings.")
	}

	prev := app.Status
	if req.Status != nil {
		if !employer {
			return nil, apperrors.NewForbiddenError("Only the employer can change the application status.")
		}
		if prev, err = s.changeStatus(tx, app, *req.Status); err != nil {
			return nil, err
		}
	}
	if req.CoverLetter != nil {
		if err := s.applicationRepo.UpdateFields(tx, app.ID, map[string]interface{}{"cover_letter": *req.CoverLetter}); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifications.StatusChanged(ctx, db, app, prev, app.Status)
	return s.respond(db, actor, app.ID)
}

func (s *applicationService) UpdateStatus(ctx context.Context, db *gorm.DB, actor *auth.Actor, applicationID string, req *dto.UpdateStatusRequest) (*dto.ApplicationResponse, error) {
	if !auth.IsEmployer(actor) && !auth.IsAdmin(actor) {
		return nil, apperrors.NewForbiddenError("Only employers can perform this action.")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	app, err := s.find(tx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if !auth.CanUpdateApplicationStatus(actor, &app.Job) {
		return nil, apperrors.NewForbiddenError("You can only update applications for your own jobs.")
	}

	prev, err := s.changeStatus(tx, app, req.Status)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "application status updated", "application_id", app.ID, "from", prev, "to", app.Status)
	s.notifications.StatusChanged(ctx, db, app, prev, app.Status)
	return s.respond(db, actor, app.ID)
}

func (s *applicationService) Withdraw(db *gorm.DB, actor *auth.Actor, applicationID string) error {
	app, err := s.find(db, actor, applicationID)
	if err != nil {
		return err
	}

	if !auth.IsCandidate(actor) || app.CandidateID != actor.ID {
		return apperrors.NewForbiddenError("You can only withdraw your own applications.")
	}
	if !auth.CanWithdrawApplication(actor, app) {
		return apperrors.NewForbiddenError("You cannot withdraw applications that have progressed beyond review stage.")
	}

	if err := s.applicationRepo.Delete(db, app.ID); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(contextOf(db), "application withdrawn", "application_id", app.ID, "candidate_id", actor.ID)
	return nil
}

func (s *applicationService) MyApplications(db *gorm.DB, actor *auth.Actor) ([]dto.ApplicationResponse, error) {
	if !auth.IsCandidate(actor) {
		return nil, apperrors.NewForbiddenError("Only candidates can view their applications.")
	}

	apps, err := s.applicationRepo.ListByCandidate(db, actor.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewApplicationList(apps, fileURLs(contextOf(db), s.storage)), nil
}
