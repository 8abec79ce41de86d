package email

import "context"

// Provider delivers rendered emails.
type Provider interface {
	Send(ctx context.Context, email *Email) error
	Validate() error
	Close() error
}

// TemplateRenderer renders named html templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
