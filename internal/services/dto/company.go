package dto

import "jobboard_backend/internal/models"

type CreateCompanyRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Website     string `json:"website" validate:"omitempty,url,max=200"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Website     *string `json:"website" validate:"omitempty,url,max=200"`
}

type CompanyResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Website     string  `json:"website"`
	Logo        *string `json:"logo"`
	JobsCount   int64   `json:"jobs_count"`
}

// CompanySummary is the company nested in job listings.
type CompanySummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Website     string  `json:"website"`
	Logo        *string `json:"logo"`
}

type CompanyListFilter struct {
	Name string
	Page int
}

func NewCompanyResponse(c *models.Company, urls URLResolver) *CompanyResponse {
	return &CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Website:     c.Website,
		Logo:        resolve(urls, c.Logo),
		JobsCount:   c.JobsCount,
	}
}

func NewCompanySummary(c *models.Company, urls URLResolver) CompanySummary {
	return CompanySummary{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Website:     c.Website,
		Logo:        resolve(urls, c.Logo),
	}
}
