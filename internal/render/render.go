// Package render resolves template identifiers to rendered artifact content.
// The orchestrator treats rendering as an opaque capability with exactly two
// outcomes per call: content, or an error it can inspect. A missing template
// is reported with ErrTemplateNotFound so callers can branch into fallback
// or skip logic without string matching.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

//go:embed all:templates
var templatesFS embed.FS

// ErrTemplateNotFound reports that no template exists for the requested id.
var ErrTemplateNotFound = errors.New("template not found")

// Renderer produces artifact content for a template id and context.
type Renderer interface {
	Render(templateID string, ctx map[string]any) (string, error)
}

// TemplateRenderer renders the embedded template set. Template ids mirror the
// output layout of a generated project ("app/main.py", "Dockerfile", ...).
type TemplateRenderer struct {
	set *template.Template
}

// NewTemplateRenderer parses the embedded template set.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	root := template.New("").Funcs(template.FuncMap{
		"title": spec.TitleCase,
		"lower": strings.ToLower,
		"snake": func(s string) string {
			return strings.ReplaceAll(strings.ToLower(s), " ", "_")
		},
	})

	err := fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return err
		}
		id := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".tmpl")
		_, err = root.New(id).Parse(string(content))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &TemplateRenderer{set: root}, nil
}

// Render executes the template registered under templateID with ctx.
func (r *TemplateRenderer) Render(templateID string, ctx map[string]any) (string, error) {
	t := r.set.Lookup(templateID)
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render %s: %w", templateID, err)
	}
	return buf.String(), nil
}
