package email

// Email is one outgoing message. Body is the plain-text alternative of
// HTMLBody.
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData is passed to html templates.
type TemplateData map[string]interface{}

// Template names.
const (
	TemplateApplicationConfirmation = "application_confirmation"
	TemplateNewApplication          = "new_application_notification"
	TemplateStatusUpdate            = "application_status_update"
)
