package email

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPProvider sends mail through gomail.
type SMTPProvider struct {
	config *SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPProvider(config *SMTPConfig) *SMTPProvider {
	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if config.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: config.Host}
		// Port 465 is implicit TLS; anything else upgrades with STARTTLS.
		d.SSL = config.Port == 465
	}
	return &SMTPProvider{config: config, dialer: d}
}

func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := p.buildMessage(email)

	done := make(chan error, 1)
	go func() {
		done <- p.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *SMTPProvider) buildMessage(email *Email) *gomail.Message {
	m := gomail.NewMessage()
	from := email.From
	if from == "" {
		from = p.config.From()
	}
	m.SetHeader("From", from)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		m.SetBody("text/plain", email.Body)
		m.AddAlternative("text/html", email.HTMLBody)
	} else {
		m.SetBody("text/plain", email.Body)
	}
	return m
}

func (p *SMTPProvider) Validate() error {
	return p.config.Validate()
}

func (p *SMTPProvider) Close() error {
	return nil
}
