package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type CreateJobRequest struct {
	Title       string         `json:"title" validate:"required,notblank,max=100"`
	JobType     models.JobType `json:"job_type" validate:"required,job_type"`
	Description string         `json:"description" validate:"required"`
	Location    string         `json:"location" validate:"required,notblank,max=100"`
	Salary      *Money         `json:"salary" validate:"required,gte=0,money"`
	Company     string         `json:"company" validate:"required"`
	IsActive    *bool          `json:"is_active"`
}

type UpdateJobRequest struct {
	Title       *string         `json:"title" validate:"omitempty,notblank,max=100"`
	JobType     *models.JobType `json:"job_type" validate:"omitempty,job_type"`
	Description *string         `json:"description" validate:"omitempty,notblank"`
	Location    *string         `json:"location" validate:"omitempty,notblank,max=100"`
	Salary      *Money          `json:"salary" validate:"omitempty,gte=0,money"`
	Company     *string         `json:"company"`
	IsActive    *bool           `json:"is_active"`
}

// JobFilter carries the job list query parameters.
type JobFilter struct {
	JobType     models.JobType
	Location    string
	SalaryMin   *float64
	SalaryMax   *float64
	CompanyName string
	IsActive    *bool
}

type JobListItem struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	JobType           models.JobType  `json:"job_type"`
	JobTypeDisplay    string          `json:"job_type_display"`
	Location          string          `json:"location"`
	Salary            Money           `json:"salary"`
	Company           CompanySummary  `json:"company"`
	PostedBy          EmployerSummary `json:"posted_by"`
	ApplicationsCount int64           `json:"applications_count"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

type JobDetail struct {
	JobListItem
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ToggleActiveResponse struct {
	Status   string `json:"status"`
	IsActive bool   `json:"is_active"`
}

func NewJobListItem(j *models.Job, urls URLResolver) JobListItem {
	return JobListItem{
		ID:                j.ID,
		Title:             j.Title,
		JobType:           j.JobType,
		JobTypeDisplay:    j.JobType.Label(),
		Location:          j.Location,
		Salary:            Money(j.Salary),
		Company:           NewCompanySummary(&j.Company, urls),
		PostedBy:          NewEmployerSummary(&j.PostedBy),
		ApplicationsCount: j.ApplicationsCount,
		IsActive:          j.IsActive,
		CreatedAt:         j.CreatedAt,
	}
}

func NewJobDetail(j *models.Job, urls URLResolver) *JobDetail {
	return &JobDetail{
		JobListItem: NewJobListItem(j, urls),
		Description: j.Description,
		UpdatedAt:   j.UpdatedAt,
	}
}

func NewJobList(jobs []models.Job, urls URLResolver) []JobListItem {
	items := make([]JobListItem, 0, len(jobs))
	for i := range jobs {
		items = append(items, NewJobListItem(&jobs[i], urls))
	}
	return items
}
