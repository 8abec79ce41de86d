package app

import (
	"context"

	"jobboard_backend/internal/email"
)

// nopEmailProvider drops every email. Used with email.backend "none".
type nopEmailProvider struct{}

func (m *nopEmailProvider) Send(ctx context.Context, e *email.Email) error { return nil }
func (m *nopEmailProvider) Validate() error                                { return nil }
func (m *nopEmailProvider) Close() error                                   { return nil }
