package repositories

import (
	"errors"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

const jobWithApplicationsCount = "jobs.*, (SELECT COUNT(*) FROM applications WHERE applications.job_id = jobs.id) AS applications_count"

// JobFilter mirrors the public job list query parameters.
type JobFilter struct {
	JobType     models.JobType
	Location    string // case-insensitive substring
	SalaryMin   *float64
	SalaryMax   *float64
	CompanyName string // case-insensitive substring
	IsActive    *bool
	PostedByID  string

	// ActiveOrPostedBy restricts results to active jobs, plus inactive jobs
	// posted by this user when non-empty.
	ActiveOnly       bool
	ActiveOrPostedBy string
}

type JobRepository interface {
	Create(db *gorm.DB, job *models.Job) error
	FindByID(db *gorm.DB, id string) (*models.Job, error)
	List(db *gorm.DB, filter JobFilter) ([]models.Job, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
	DeleteByCompany(db *gorm.DB, companyID string) error
	DeactivateByPoster(db *gorm.DB, userID string) (int64, error)
	IDsByCompany(db *gorm.DB, companyID string) ([]string, error)
}

type jobRepository struct{}

func NewJobRepository() JobRepository {
	return &jobRepository{}
}

func (r *jobRepository) Create(db *gorm.DB, job *models.Job) error {
	return db.Omit("Company", "PostedBy", "Applications").Create(job).Error
}

// FindByID preloads the company and poster and fills applications_count.
func (r *jobRepository) FindByID(db *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	err := db.Model(&models.Job{}).
		Select(jobWithApplicationsCount).
		Preload("Company").
		Preload("PostedBy").
		Where("jobs.id = ?", id).
		Take(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// List returns matching jobs newest first. It is not paginated.
func (r *jobRepository) List(db *gorm.DB, filter JobFilter) ([]models.Job, error) {
	query := db.Model(&models.Job{}).Select(jobWithApplicationsCount)

	if filter.JobType != "" {
		query = query.Where("jobs.job_type = ?", filter.JobType)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(jobs.location) LIKE ? ESCAPE '!'", containsPattern(filter.Location))
	}
	if filter.SalaryMin != nil {
		query = query.Where("jobs.salary >= ?", *filter.SalaryMin)
	}
	if filter.SalaryMax != nil {
		query = query.Where("jobs.salary <= ?", *filter.SalaryMax)
	}
	if filter.CompanyName != "" {
		query = query.Where(
			"jobs.company_id IN (SELECT id FROM companies WHERE LOWER(companies.name) LIKE ? ESCAPE '!')",
			containsPattern(filter.CompanyName),
		)
	}
	if filter.IsActive != nil {
		query = query.Where("jobs.is_active = ?", *filter.IsActive)
	}
	if filter.PostedByID != "" {
		query = query.Where("jobs.posted_by_id = ?", filter.PostedByID)
	}

	switch {
	case filter.ActiveOrPostedBy != "":
		query = query.Where("(jobs.is_active = ? OR jobs.posted_by_id = ?)", true, filter.ActiveOrPostedBy)
	case filter.ActiveOnly:
		query = query.Where("jobs.is_active = ?", true)
	}

	var jobs []models.Job
	err := query.
		Preload("Company").
		Preload("PostedBy").
		Order("jobs.created_at DESC").
		Order("jobs.id").
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Job{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Job{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) DeleteByCompany(db *gorm.DB, companyID string) error {
	return db.Where("company_id = ?", companyID).Delete(&models.Job{}).Error
}

// DeactivateByPoster switches off every active job posted by userID.
func (r *jobRepository) DeactivateByPoster(db *gorm.DB, userID string) (int64, error) {
	result := db.Model(&models.Job{}).
		Where("posted_by_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (r *jobRepository) IDsByCompany(db *gorm.DB, companyID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Job{}).Where("company_id = ?", companyID).Pluck("id", &ids).Error
	return ids, err
}
