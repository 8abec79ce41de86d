package repositories

import (
	"errors"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists")
)

// ApplicationScope limits which applications an actor can reach.
// The zero value reaches everything.
type ApplicationScope struct {
	CandidateID   string // applications submitted by this candidate
	JobPostedByID string // applications to jobs posted by this employer
	NoAccess      bool   // matches nothing
}

type ApplicationFilter struct {
	Status      models.ApplicationStatus
	JobID       string
	CandidateID string
}

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.Application) error
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	FindInScope(db *gorm.DB, id string, scope ApplicationScope) (*models.Application, error)
	Exists(db *gorm.DB, jobID, candidateID string) (bool, error)
	List(db *gorm.DB, scope ApplicationScope, filter ApplicationFilter, page Page) ([]models.Application, int64, error)
	ListByJob(db *gorm.DB, jobID string) ([]models.Application, error)
	ListByCandidate(db *gorm.DB, candidateID string) ([]models.Application, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
	DeleteByJobIDs(db *gorm.DB, jobIDs []string) error
}

type applicationRepository struct{}

func NewApplicationRepository() ApplicationRepository {
	return &applicationRepository{}
}

func (r *applicationRepository) Create(db *gorm.DB, app *models.Application) error {
	if err := db.Omit("Job", "Candidate").Create(app).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrApplicationExists
		}
		return err
	}
	return nil
}

func withApplicationRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Job").Preload("Job.Company").Preload("Job.PostedBy").Preload("Candidate")
}

func (s ApplicationScope) apply(db *gorm.DB) *gorm.DB {
	switch {
	case s.NoAccess:
		return db.Where("1 = 0")
	case s.CandidateID != "":
		return db.Where("applications.candidate_id = ?", s.CandidateID)
	case s.JobPostedByID != "":
		return db.Where("applications.job_id IN (SELECT id FROM jobs WHERE jobs.posted_by_id = ?)", s.JobPostedByID)
	}
	return db
}

func (r *applicationRepository) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	return r.FindInScope(db, id, ApplicationScope{})
}

// FindInScope returns ErrApplicationNotFound for ids outside scope.
func (r *applicationRepository) FindInScope(db *gorm.DB, id string, scope ApplicationScope) (*models.Application, error) {
	var app models.Application
	query := scope.apply(db.Model(&models.Application{}).Where("applications.id = ?", id))
	if err := withApplicationRelations(query).Take(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Exists(db *gorm.DB, jobID, candidateID string) (bool, error) {
	var count int64
	err := db.Model(&models.Application{}).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) List(db *gorm.DB, scope ApplicationScope, filter ApplicationFilter, page Page) ([]models.Application, int64, error) {
	query := scope.apply(db.Model(&models.Application{}))
	if filter.Status != "" {
		query = query.Where("applications.status = ?", filter.Status)
	}
	if filter.JobID != "" {
		query = query.Where("applications.job_id = ?", filter.JobID)
	}
	if filter.CandidateID != "" {
		query = query.Where("applications.candidate_id = ?", filter.CandidateID)
	}

	query = shareable(query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	err := withApplicationRelations(page.apply(query)).
		Order("applications.created_at DESC").
		Order("applications.id").
		Find(&apps).Error
	return apps, total, err
}

func (r *applicationRepository) ListByJob(db *gorm.DB, jobID string) ([]models.Application, error) {
	var apps []models.Application
	err := withApplicationRelations(db.Where("job_id = ?", jobID)).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) ListByCandidate(db *gorm.DB, candidateID string) ([]models.Application, error) {
	var apps []models.Application
	err := withApplicationRelations(db.Where("candidate_id = ?", candidateID)).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Application{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *applicationRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Application{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *applicationRepository) DeleteByJobIDs(db *gorm.DB, jobIDs []string) error {
	if len(jobIDs) == 0 {
		return nil
	}
	return db.Where("job_id IN ?", jobIDs).Delete(&models.Application{}).Error
}
