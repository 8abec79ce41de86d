package repositories

import (
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserFilter narrows user listings. Inactive users are excluded unless
// IncludeInactive is set.
type UserFilter struct {
	IncludeInactive bool
	UserType        models.UserType
	CompanyID       string
}

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	EmailExists(db *gorm.DB, email string) (bool, error)
	List(db *gorm.DB, filter UserFilter, page Page) ([]models.User, int64, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Deactivate(db *gorm.DB, id string) error
	UpdateLastLogin(db *gorm.DB, id string, at time.Time) error
	BindCompany(db *gorm.DB, id, companyID string) error
	UnbindCompany(db *gorm.DB, companyID string) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches case-insensitively.
func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) List(db *gorm.DB, filter UserFilter, page Page) ([]models.User, int64, error) {
	query := db.Model(&models.User{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.UserType != "" {
		query = query.Where("user_type = ?", filter.UserType)
	}
	if filter.CompanyID != "" {
		query = query.Where("company_id = ?", filter.CompanyID)
	}

	query = shareable(query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := page.apply(query).Order("created_at DESC").Order("id").Find(&users).Error
	return users, total, err
}

func (r *userRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Deactivate(db *gorm.DB, id string) error {
	return r.UpdateFields(db, id, map[string]interface{}{"is_active": false})
}

func (r *userRepository) UpdateLastLogin(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *userRepository) BindCompany(db *gorm.DB, id, companyID string) error {
	return r.UpdateFields(db, id, map[string]interface{}{"company_id": companyID})
}

// UnbindCompany clears company_id on every user bound to companyID.
func (r *userRepository) UnbindCompany(db *gorm.DB, companyID string) error {
	return db.Model(&models.User{}).
		Where("company_id = ?", companyID).
		Update("company_id", nil).Error
}
