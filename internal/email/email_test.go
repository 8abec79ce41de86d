package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplatesRender(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	for _, name := range []string{TemplateApplicationConfirmation, TemplateNewApplication, TemplateStatusUpdate} {
		t.Run(name, func(t *testing.T) {
			out, err := tm.Render(name, TemplateData{
				"candidate_name": "Jane Doe",
				"employer_name":  "Boss",
				"job_title":      "Backend Dev",
				"company_name":   "Acme",
				"status_code":    "INT",
				"old_status":     "Applied",
				"new_status":     "Interview",
			})
			require.NoError(t, err)
			assert.Contains(t, out, "Backend Dev")
		})
	}

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestStatusTemplateEscapesInput(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	out, err := tm.Render(TemplateStatusUpdate, TemplateData{
		"candidate_name": "<script>x</script>",
		"status_code":    "REJ",
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "not to move forward")
}

func TestStripTags(t *testing.T) {
	in := "<html><body>\n  <p>Hello &amp; welcome</p>\n\n\n  <p>Bye</p>\n</body></html>"
	assert.Equal(t, "Hello & welcome\n\nBye", StripTags(in))
}

func TestConsoleProvider(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProvider("noreply@jobboard.local", &buf)

	err := p.Send(context.Background(), &Email{To: []string{"a@b.io"}, Subject: "Hi", Body: "text"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Hi")
	assert.Contains(t, buf.String(), "From: noreply@jobboard.local")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Send(ctx, &Email{To: []string{"a@b.io"}}), context.Canceled)
}

func TestSMTPConfigFrom(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Job Board <noreply@jobboard.local>", cfg.From())
	require.NoError(t, cfg.Validate())

	cfg.Host = ""
	assert.Error(t, cfg.Validate())
}
