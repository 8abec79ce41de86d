package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type RegisterRequest struct {
	Email     string          `json:"email" validate:"required,email,max=254"`
	Password  string          `json:"password" validate:"required,min=8,max=128"`
	UserType  models.UserType `json:"user_type" validate:"required,user_type"`
	FirstName string          `json:"first_name" validate:"required,max=150"`
	LastName  string          `json:"last_name" validate:"required,max=150"`
	Phone     string          `json:"phone" validate:"omitempty,max=15"`
}

type RegisterResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	UserType  models.UserType `json:"user_type"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	IsActive  bool            `json:"is_active"`
}

// UpdateProfileRequest is a partial update. Email and user_type are
// read-only.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=15"`
}

type UserResponse struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Phone      string          `json:"phone"`
	UserType   models.UserType `json:"user_type"`
	IsActive   bool            `json:"is_active"`
	Company    *string         `json:"company"`
	ResumeURL  *string         `json:"resume_url"`
	DateJoined time.Time       `json:"date_joined"`
}

type UserListFilter struct {
	IncludeInactive bool
	Page            int
}

// EmployerSummary is the poster nested in job listings.
type EmployerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CandidateSummary is the candidate nested in applications.
type CandidateSummary struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Phone     string          `json:"phone"`
	UserType  models.UserType `json:"user_type"`
}

func NewUserResponse(u *models.User, urls URLResolver) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		UserType:   u.UserType,
		IsActive:   u.IsActive,
		Company:    u.CompanyID,
		ResumeURL:  resolve(urls, u.Resume),
		DateJoined: u.CreatedAt,
	}
}

func NewRegisterResponse(u *models.User) *RegisterResponse {
	return &RegisterResponse{
		ID:        u.ID,
		Email:     u.Email,
		UserType:  u.UserType,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
	}
}

func NewEmployerSummary(u *models.User) EmployerSummary {
	return EmployerSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func NewCandidateSummary(u *models.User) CandidateSummary {
	return CandidateSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		UserType:  u.UserType,
	}
}
