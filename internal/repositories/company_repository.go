package repositories

import (
	"errors"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company already exists")
)

const companyWithJobsCount = "companies.*, (SELECT COUNT(*) FROM jobs WHERE jobs.company_id = companies.id) AS jobs_count"

type CompanyFilter struct {
	Name string // exact match
}

type CompanyRepository interface {
	Create(db *gorm.DB, company *models.Company) error
	FindByID(db *gorm.DB, id string) (*models.Company, error)
	NameTaken(db *gorm.DB, name, excludeID string) (bool, error)
	List(db *gorm.DB, filter CompanyFilter, page Page) ([]models.Company, int64, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
}

type companyRepository struct{}

func NewCompanyRepository() CompanyRepository {
	return &companyRepository{}
}

func (r *companyRepository) Create(db *gorm.DB, company *models.Company) error {
	if err := db.Omit("Jobs").Create(company).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrCompanyAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID loads the company with its jobs_count.
func (r *companyRepository) FindByID(db *gorm.DB, id string) (*models.Company, error) {
	var company models.Company
	err := db.Model(&models.Company{}).
		Select(companyWithJobsCount).
		Where("companies.id = ?", id).
		Take(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}

// NameTaken checks case-insensitive uniqueness, ignoring excludeID.
func (r *companyRepository) NameTaken(db *gorm.DB, name, excludeID string) (bool, error) {
	query := db.Model(&models.Company{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *companyRepository) List(db *gorm.DB, filter CompanyFilter, page Page) ([]models.Company, int64, error) {
	query := db.Model(&models.Company{})
	if filter.Name != "" {
		query = query.Where("companies.name = ?", filter.Name)
	}

	query = shareable(query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []models.Company
	err := page.apply(query.Select(companyWithJobsCount)).
		Order("companies.name").
		Find(&companies).Error
	return companies, total, err
}

func (r *companyRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Company{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return ErrCompanyAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *companyRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Company{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
