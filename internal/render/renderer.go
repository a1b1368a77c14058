package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/nav"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer binds view models to the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates once.
func New() (*Renderer, error) {
	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: t}, nil
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"heading": sectionHeading,
		"ago":     humanize.Time,
		"bytes":   func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
		"comma":   humanize.Comma,
		"stamp":   func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}
	t, err := template.New("_root").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// Templates exposes the parsed set, e.g. for gin's HTML renderer.
func (r *Renderer) Templates() *template.Template { return r.tmpl }

// Page writes the full portfolio page.
func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "page", p)
}

// Fallback writes the static page shell with notice in place of content.
func (r *Renderer) Fallback(w io.Writer, notice string) error {
	return r.tmpl.ExecuteTemplate(w, "page", FallbackPage(notice))
}

func sectionHeading(id string) string {
	for _, l := range nav.Build(nil, nav.Sections) {
		if l.Section == id {
			return l.Name
		}
	}
	return id
}
