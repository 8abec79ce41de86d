package email

import (
	"fmt"
	"time"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:      "localhost",
		Port:      587,
		FromEmail: "noreply@jobboard.local",
		FromName:  "Job Board",
		UseTLS:    true,
		Timeout:   30 * time.Second,
	}
}

func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.Port)
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// From formats the sender as `Name <address>` when a name is set.
func (c *SMTPConfig) From() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}
