package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type CreateApplicationRequest struct {
	Job         string `json:"job" validate:"required"`
	CoverLetter string `json:"cover_letter"`
}

// UpdateApplicationRequest is a partial update. Employers change status,
// candidates change cover_letter.
type UpdateApplicationRequest struct {
	Status      *models.ApplicationStatus `json:"status" validate:"omitempty,application_status"`
	CoverLetter *string                   `json:"cover_letter"`
}

type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,application_status"`
}

type ApplicationFilter struct {
	Status      models.ApplicationStatus `validate:"omitempty,application_status"`
	JobID       string
	CandidateID string
	Page        int
}

type ApplicationResponse struct {
	ID            string                   `json:"id"`
	Job           JobListItem              `json:"job"`
	Candidate     CandidateSummary         `json:"candidate"`
	CoverLetter   string                   `json:"cover_letter"`
	Status        models.ApplicationStatus `json:"status"`
	StatusDisplay string                   `json:"status_display"`
	AppliedAt     time.Time                `json:"applied_at"`
}

const (
	EmailTypeConfirmation         = "confirmation"
	EmailTypeEmployerNotification = "employer_notification"
)

type BulkNotifyRequest struct {
	ApplicationIDs []string `json:"application_ids" validate:"required,min=1,max=500,dive,required"`
	EmailType      string   `json:"email_type" validate:"required,oneof=confirmation employer_notification"`
}

type BulkNotifyResult struct {
	ApplicationID string `json:"application_id"`
	TaskID        string `json:"task_id,omitempty"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

type BulkNotifyResponse struct {
	Results []BulkNotifyResult `json:"results"`
}

func NewApplicationResponse(a *models.Application, urls URLResolver) ApplicationResponse {
	return ApplicationResponse{
		ID:            a.ID,
		Job:           NewJobListItem(&a.Job, urls),
		Candidate:     NewCandidateSummary(&a.Candidate),
		CoverLetter:   a.CoverLetter,
		Status:        a.Status,
		StatusDisplay: a.Status.Label(),
		AppliedAt:     a.CreatedAt,
	}
}

func NewApplicationList(apps []models.Application, urls URLResolver) []ApplicationResponse {
	items := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, NewApplicationResponse(&apps[i], urls))
	}
	return items
}
