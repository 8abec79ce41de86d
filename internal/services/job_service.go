package services

import (
	"errors"
	"fmt"
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const msgOwnCompanyOnly = "You can only post jobs for your own company."

type JobService interface {
	// List is not paginated. Inactive jobs are only listed for their poster.
	List(db *gorm.DB, actor *auth.Actor, filter dto.JobFilter) ([]dto.JobListItem, error)
	Get(db *gorm.DB, jobID string) (*dto.JobDetail, error)
	Create(db *gorm.DB, actor *auth.Actor, req *dto.CreateJobRequest) (*dto.JobDetail, error)
	Update(db *gorm.DB, actor *auth.Actor, jobID string, req *dto.UpdateJobRequest) (*dto.JobDetail, error)
	Delete(db *gorm.DB, actor *auth.Actor, jobID string) error
	ToggleActive(db *gorm.DB, actor *auth.Actor, jobID string) (*dto.ToggleActiveResponse, error)
	Applications(db *gorm.DB, actor *auth.Actor, jobID string) ([]dto.ApplicationResponse, error)
	MyJobs(db *gorm.DB, actor *auth.Actor) ([]dto.JobListItem, error)
}

type jobService struct {
	jobRepo         repositories.JobRepository
	companyRepo     repositories.CompanyRepository
	applicationRepo repositories.ApplicationRepository
	storage         storage.Storage
}

func NewJobService(
	jobRepo repositories.JobRepository,
	companyRepo repositories.CompanyRepository,
	applicationRepo repositories.ApplicationRepository,
	store storage.Storage,
) JobService {
	return &jobService{
		jobRepo:         jobRepo,
		companyRepo:     companyRepo,
		applicationRepo: applicationRepo,
		storage:         store,
	}
}

func (s *jobService) List(db *gorm.DB, actor *auth.Actor, filter dto.JobFilter) ([]dto.JobListItem, error) {
	repoFilter := repositories.JobFilter{
		JobType:     filter.JobType,
		Location:    filter.Location,
		SalaryMin:   filter.SalaryMin,
		SalaryMax:   filter.SalaryMax,
		CompanyName: filter.CompanyName,
		IsActive:    filter.IsActive,
	}
	if auth.IsEmployer(actor) {
		repoFilter.ActiveOrPostedBy = actor.ID
	} else {
		repoFilter.ActiveOnly = true
	}

	jobs, err := s.jobRepo.List(db, repoFilter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewJobList(jobs, fileURLs(contextOf(db), s.storage)), nil
}

func (s *jobService) find(db *gorm.DB, jobID string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

func (s *jobService) Get(db *gorm.DB, jobID string) (*dto.JobDetail, error) {
	job, err := s.find(db, jobID)
	if err != nil {
		return nil, err
	}
	return dto.NewJobDetail(job, fileURLs(contextOf(db), s.storage)), nil
}

// checkCompany resolves the company a job is posted for. Employers may only
// use their own company.
func (s *jobService) checkCompany(db *gorm.DB, actor *auth.Actor, companyID string) error {
	if _, err := s.companyRepo.FindByID(db, companyID); err != nil {
		if errors.Is(err, repositories.ErrCompanyNotFound) {
			return apperrors.FieldError("company", fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", companyID))
		}
		return apperrors.InternalError(err)
	}
	if !auth.CanPostForCompany(actor, companyID) && !auth.IsAdmin(actor) {
		return apperrors.FieldError("company", msgOwnCompanyOnly)
	}
	return nil
}

func (s *jobService) Create(db *gorm.DB, actor *auth.Actor, req *dto.CreateJobRequest) (*dto.JobDetail, error) {
	if !auth.IsEmployer(actor) {
		return nil, apperrors.NewForbiddenError("Only employers can perform this action.")
	}
	if err := s.checkCompany(db, actor, req.Company); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	job := &models.Job{
		Title:       strings.TrimSpace(req.Title),
		JobType:     req.JobType,
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		Salary:      float64(*req.Salary),
		CompanyID:   req.Company,
		IsActive:    isActive,
		PostedByID:  actor.ID,
	}
	if err := s.jobRepo.Create(db, job); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(contextOf(db), "job posted", "job_id", job.ID, "company_id", job.CompanyID, "by", actor.ID)
	return s.Get(db, job.ID)
}

func (s *jobService) Update(db *gorm.DB, actor *auth.Actor, jobID string, req *dto.UpdateJobRequest) (*dto.JobDetail, error) {
	job, err := s.find(db, jobID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageJob(actor, job) {
		return nil, apperrors.NewForbiddenError("You can only update your own job postings.")
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.JobType != nil {
		fields["job_type"] = *req.JobType
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Location != nil {
		fields["location"] = strings.TrimSpace(*req.Location)
	}
	if req.Salary != nil {
		fields["salary"] = float64(*req.Salary)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Company != nil && *req.Company != job.CompanyID {
		if err := s.checkCompany(db, actor, *req.Company); err != nil {
			return nil, err
		}
		fields["company_id"] = *req.Company
	}

	if len(fields) > 0 {
		if err := s.jobRepo.UpdateFields(db, job.ID, fields); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	return s.Get(db, job.ID)
}

func (s *jobService) Delete(db *gorm.DB, actor *auth.Actor, jobID string) error {
	job, err := s.find(db, jobID)
	if err != nil {
		return err
	}
	if !auth.CanManageJob(actor, job) {
		return apperrors.NewForbiddenError("You can only delete your own job postings.")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.applicationRepo.DeleteByJobIDs(tx, []string{job.ID}); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.jobRepo.Delete(tx, job.ID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(contextOf(db), "job deleted", "job_id", job.ID, "by", actor.ID)
	return nil
}

func (s *jobService) ToggleActive(db *gorm.DB, actor *auth.Actor, jobID string) (*dto.ToggleActiveResponse, error) {
	job, err := s.find(db, jobID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageJob(actor, job) {
		return nil, apperrors.NewForbiddenError("You can only modify your own job postings.")
	}

	active := !job.IsActive
	if err := s.jobRepo.UpdateFields(db, job.ID, map[string]interface{}{"is_active": active}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	status := "job deactivated"
	if active {
		status = "job activated"
	}
	return &dto.ToggleActiveResponse{Status: status, IsActive: active}, nil
}

func (s *jobService) Applications(db *gorm.DB, actor *auth.Actor, jobID string) ([]dto.ApplicationResponse, error) {
	if !auth.IsEmployer(actor) && !auth.IsAdmin(actor) {
		return nil, apperrors.NewForbiddenError("Only employers can view applications.")
	}

	job, err := s.find(db, jobID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageJob(actor, job) {
		return nil, apperrors.NewForbiddenError("You can only view applications for your own jobs.")
	}

	apps, err := s.applicationRepo.ListByJob(db, job.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewApplicationList(apps, fileURLs(contextOf(db), s.storage)), nil
}

func (s *jobService) MyJobs(db *gorm.DB, actor *auth.Actor) ([]dto.JobListItem, error) {
	if !auth.IsEmployer(actor) {
		return nil, apperrors.NewForbiddenError("Only employers can perform this action.")
	}

	jobs, err := s.jobRepo.List(db, repositories.JobFilter{PostedByID: actor.ID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewJobList(jobs, fileURLs(contextOf(db), s.storage)), nil
}
