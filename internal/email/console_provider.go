package email

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ConsoleProvider writes emails to a writer instead of sending them.
// Used in development.
type ConsoleProvider struct {
	from string
	mu   sync.Mutex
	w    io.Writer
}

func NewConsoleProvider(from string, w io.Writer) *ConsoleProvider {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleProvider{from: from, w: w}
}

func (p *ConsoleProvider) Send(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := email.From
	if from == "" {
		from = p.from
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w,
		"From: %s\nTo: %s\nSubject: %s\n\n%s\n%s\n",
		from, strings.Join(email.To, ", "), email.Subject, email.Body, strings.Repeat("-", 72),
	)
	return err
}

func (p *ConsoleProvider) Validate() error {
	return nil
}

func (p *ConsoleProvider) Close() error {
	return nil
}
