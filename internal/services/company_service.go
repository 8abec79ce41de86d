package services

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/imageprocessor"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const msgCompanyNameTaken = "A company with this name already exists."

type CompanyService interface {
	List(db *gorm.DB, filter dto.CompanyListFilter) (*dto.Page[dto.CompanyResponse], error)
	Get(db *gorm.DB, companyID string) (*dto.CompanyResponse, error)
	// Create binds an employer without a company to the new company.
	Create(db *gorm.DB, actor *auth.Actor, req *dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	Update(db *gorm.DB, actor *auth.Actor, companyID string, req *dto.UpdateCompanyRequest) (*dto.CompanyResponse, error)
	// Delete removes the company with its jobs and their applications.
	Delete(db *gorm.DB, actor *auth.Actor, companyID string) error
	UploadLogo(ctx context.Context, db *gorm.DB, actor *auth.Actor, companyID string, file *FileUpload) (*dto.CompanyResponse, error)
}

type companyService struct {
	companyRepo     repositories.CompanyRepository
	userRepo        repositories.UserRepository
	jobRepo         repositories.JobRepository
	applicationRepo repositories.ApplicationRepository
	storage         storage.Storage
	images          *imageprocessor.Processor
	uploads         UploadPolicy
	pageSize        int
}

func NewCompanyService(
	companyRepo repositories.CompanyRepository,
	userRepo repositories.UserRepository,
	jobRepo repositories.JobRepository,
	applicationRepo repositories.ApplicationRepository,
	store storage.Storage,
	images *imageprocessor.Processor,
	uploads UploadPolicy,
	pageSize int,
) CompanyService {
	return &companyService{
		companyRepo:     companyRepo,
		userRepo:        userRepo,
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		storage:         store,
		images:          images,
		uploads:         uploads,
		pageSize:        pageSize,
	}
}

func (s *companyService) List(db *gorm.DB, filter dto.CompanyListFilter) (*dto.Page[dto.CompanyResponse], error) {
	page := pageOf(filter.Page, s.pageSize)
	companies, total, err := s.companyRepo.List(db, repositories.CompanyFilter{Name: filter.Name}, page)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	urls := fileURLs(contextOf(db), s.storage)
	items := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		items = append(items, *dto.NewCompanyResponse(&companies[i], urls))
	}
	return newPage(items, total, page), nil
}

func (s *companyService) find(db *gorm.DB, companyID string) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(db, companyID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompanyNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return company, nil
}

func (s *companyService) Get(db *gorm.DB, companyID string) (*dto.CompanyResponse, error) {
	company, err := s.find(db, companyID)
	if err != nil {
		return nil, err
	}
	return dto.NewCompanyResponse(company, fileURLs(contextOf(db), s.storage)), nil
}

func (s *companyService) checkName(db *gorm.DB, name, excludeID string) error {
	taken, err := s.companyRepo.NameTaken(db, name, excludeID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if taken {
		return apperrors.FieldError("name", msgCompanyNameTaken)
	}
	return nil
}

func (s *companyService) Create(db *gorm.DB, actor *auth.Actor, req *dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if !auth.CanCreateCompany(actor) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.FieldError("name", "This field may not be blank.")
	}
	if err := s.checkName(db, name, ""); err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	company := &models.Company{
		Name:        name,
		Description: req.Description,
		Website:     req.Website,
	}
	if err := s.companyRepo.Create(tx, company); err != nil {
		if errors.Is(err, repositories.ErrCompanyAlreadyExists) {
			return nil, apperrors.FieldError("name", msgCompanyNameTaken)
		}
		return nil, apperrors.InternalError(err)
	}

	bound := false
	if auth.IsEmployer(actor) && actor.CompanyID == nil {
		if err := s.userRepo.BindCompany(tx, actor.ID, company.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		bound = true
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(contextOf(db), "company created",
		"company_id", company.ID,
		"by", actor.ID,
		"employer_bound", bound,
	)
	return s.Get(db, company.ID)
}

func (s *companyService) Update(db *gorm.DB, actor *auth.Actor, companyID string, req *dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := s.find(db, companyID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageCompany(actor, company) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.FieldError("name", "This field may not be blank.")
		}
		if err := s.checkName(db, name, company.ID); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}

	if len(fields) > 0 {
		if err := s.companyRepo.UpdateFields(db, company.ID, fields); err != nil {
			if errors.Is(err, repositories.ErrCompanyAlreadyExists) {
				return nil, apperrors.FieldError("name", msgCompanyNameTaken)
			}
			return nil, apperrors.InternalError(err)
		}
	}

	return s.Get(db, company.ID)
}

func (s *companyService) Delete(db *gorm.DB, actor *auth.Actor, companyID string) error {
	company, err := s.find(db, companyID)
	if err != nil {
		return err
	}
	if !auth.CanManageCompany(actor, company) {
		return apperrors.ErrInsufficientPermissions
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	jobIDs, err := s.jobRepo.IDsByCompany(tx, company.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.applicationRepo.DeleteByJobIDs(tx, jobIDs); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.jobRepo.DeleteByCompany(tx, company.ID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UnbindCompany(tx, company.ID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.companyRepo.Delete(tx, company.ID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	ctx := contextOf(db)
	if company.Logo != nil && s.storage != nil {
		if err := s.storage.Delete(ctx, *company.Logo); err != nil {
			logger.CtxWarn(ctx, "failed to remove company logo", "key", *company.Logo, "error", err)
		}
	}

	logger.CtxInfo(ctx, "company deleted", "company_id", company.ID, "jobs_deleted", len(jobIDs))
	return nil
}

func (s *companyService) UploadLogo(ctx context.Context, db *gorm.DB, actor *auth.Actor, companyID string, file *FileUpload) (*dto.CompanyResponse, error) {
	company, err := s.find(db, companyID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageCompany(actor, company) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if _, err := s.uploads.sniff(file, s.uploads.ImageTypes); err != nil {
		return nil, err
	}

	img, err := s.images.Logo(file.Reader)
	if err != nil {
		if errors.Is(err, imageprocessor.ErrUnsupportedFormat) {
			return nil, apperrors.ErrInvalidFileType
		}
		return nil, apperrors.InternalError(err)
	}

	key := storage.NewKey("company_logos", "logo"+img.Extension)
	if err := s.storage.Save(ctx, key, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.companyRepo.UpdateFields(db, company.ID, map[string]interface{}{"logo": key}); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.CtxWarn(ctx, "failed to remove orphaned logo", "key", key, "error", delErr)
		}
		return nil, apperrors.InternalError(err)
	}

	if company.Logo != nil && *company.Logo != "" {
		if err := s.storage.Delete(ctx, *company.Logo); err != nil {
			logger.CtxWarn(ctx, "failed to remove previous logo", "key", *company.Logo, "error", err)
		}
	}

	return s.Get(db, company.ID)
}
