package notifications

import (
	"fmt"

	"jobboard_backend/internal/email"
	"jobboard_backend/internal/models"
)

const (
	dateLayout     = "January 02, 2006"
	dateTimeLayout = "January 02, 2006 at 03:04 PM"
)

// Composer renders the email for a task. The application must be loaded
// with Job.Company, Job.PostedBy and Candidate.
type Composer struct {
	renderer email.TemplateRenderer
	from     string
}

func NewComposer(renderer email.TemplateRenderer, from string) *Composer {
	return &Composer{renderer: renderer, from: from}
}

func (c *Composer) Compose(task Task, app *models.Application) (*email.Email, error) {
	switch task.Kind {
	case models.EmailKindConfirmation:
		return c.confirmation(app)
	case models.EmailKindNewApplication:
		return c.newApplication(app)
	case models.EmailKindStatusUpdate:
		return c.statusUpdate(app, task.OldStatus, task.NewStatus)
	default:
		return nil, fmt.Errorf("unknown email kind %q", task.Kind)
	}
}

func (c *Composer) render(template, subject string, to string, data email.TemplateData) (*email.Email, error) {
	htmlBody, err := c.renderer.Render(template, data)
	if err != nil {
		return nil, err
	}
	return &email.Email{
		From:     c.from,
		To:       []string{to},
		Subject:  subject,
		Body:     email.StripTags(htmlBody),
		HTMLBody: htmlBody,
	}, nil
}

func (c *Composer) confirmation(app *models.Application) (*email.Email, error) {
	job := app.Job
	subject := fmt.Sprintf("Application Confirmation - %s at %s", job.Title, job.Company.Name)
	return c.render(email.TemplateApplicationConfirmation, subject, app.Candidate.Email, email.TemplateData{
		"candidate_name":     app.Candidate.FullName(),
		"job_title":          job.Title,
		"company_name":       job.Company.Name,
		"company_website":    job.Company.Website,
		"job_location":       job.Location,
		"job_type":           job.JobType.Label(),
		"salary":             fmt.Sprintf("%.2f", job.Salary),
		"application_date":   app.CreatedAt.Format(dateLayout),
		"application_status": app.Status.Label(),
	})
}

func (c *Composer) newApplication(app *models.Application) (*email.Email, error) {
	job := app.Job
	subject := fmt.Sprintf("New Application Received - %s", job.Title)
	return c.render(email.TemplateNewApplication, subject, job.PostedBy.Email, email.TemplateData{
		"employer_name":    job.PostedBy.FullName(),
		"candidate_name":   app.Candidate.FullName(),
		"candidate_email":  app.Candidate.Email,
		"candidate_phone":  app.Candidate.Phone,
		"job_title":        job.Title,
		"company_name":     job.Company.Name,
		"application_date": app.CreatedAt.Format(dateTimeLayout),
		"cover_letter":     app.CoverLetter,
	})
}

// StatusSubject picks the subject line for a status change email.
func StatusSubject(status models.ApplicationStatus, jobTitle, companyName string) string {
	suffix := fmt.Sprintf("%s at %s", jobTitle, companyName)
	switch status {
	case models.ApplicationStatusUnderReview:
		return "Your application is under review - " + suffix
	case models.ApplicationStatusInterview:
		return "Interview invitation - " + suffix
	case models.ApplicationStatusOffer:
		return "Job offer - " + suffix
	default:
		return "Application update - " + suffix
	}
}

func (c *Composer) statusUpdate(app *models.Application, oldStatus, newStatus models.ApplicationStatus) (*email.Email, error) {
	job := app.Job
	if newStatus == "" {
		newStatus = app.Status
	}
	subject := StatusSubject(newStatus, job.Title, job.Company.Name)
	return c.render(email.TemplateStatusUpdate, subject, app.Candidate.Email, email.TemplateData{
		"candidate_name":   app.Candidate.FullName(),
		"job_title":        job.Title,
		"company_name":     job.Company.Name,
		"company_website":  job.Company.Website,
		"old_status":       oldStatus.Label(),
		"new_status":       newStatus.Label(),
		"status_code":      string(newStatus),
		"application_date": app.CreatedAt.Format(dateLayout),
	})
}
