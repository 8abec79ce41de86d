package email

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"regexp"
	"strings"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateManager holds parsed html templates.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{
		templates: make(map[string]*template.Template),
	}
}

// NewDefaultTemplateManager loads the embedded notification templates.
func NewDefaultTemplateManager() (*TemplateManager, error) {
	tm := NewTemplateManager()
	if err := tm.LoadFS(templateFS, "templates"); err != nil {
		return nil, err
	}
	return tm, nil
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

// LoadFS adds every *.html file under dir, named after the file.
func (tm *TemplateManager) LoadFS(fsys fs.FS, dir string) error {
	return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		name := strings.TrimSuffix(path[strings.LastIndex(path, "/")+1:], ".html")
		if err := tm.AddTemplate(name, string(content)); err != nil {
			return fmt.Errorf("failed to add template %s: %w", name, err)
		}
		return nil
	})
}

var (
	tagPattern   = regexp.MustCompile(`(?s)<[^>]*>`)
	blankPattern = regexp.MustCompile(`\n\s*\n+`)
)

// StripTags turns rendered html into a plain-text body.
func StripTags(htmlBody string) string {
	text := tagPattern.ReplaceAllString(htmlBody, "")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankPattern.ReplaceAllString(text, "\n\n"))
}
