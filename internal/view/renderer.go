package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/fastygo/todo/assets"
)

// Data is the set of named values handed to a view.
type Data map[string]interface{}

// Renderer executes the embedded page templates by file name.
type Renderer struct {
	templates *template.Template
}

var patterns = []string{
	"templates/*.html",
	"templates/partials/*.html",
}

// New parses the templates embedded in the assets package.
func New() (*Renderer, error) {
	return NewFromFS(assets.Templates)
}

// NewFromFS parses page templates and partials from fsys.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	tmpl := template.New("")
	for _, pattern := range patterns {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, match := range matches {
			content, err := fs.ReadFile(fsys, match)
			if err != nil {
				return nil, fmt.Errorf("read template %s: %w", match, err)
			}
			if _, err := tmpl.New(path.Base(match)).Parse(string(content)); err != nil {
				return nil, fmt.Errorf("parse template %s: %w", match, err)
			}
		}
	}
	return &Renderer{templates: tmpl}, nil
}

// Render writes view name to w. The page is rendered into a buffer first so a
// template failure never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data Data) error {
	if data == nil {
		data = Data{}
	}
	if r.templates.Lookup(name) == nil {
		return fmt.Errorf("view %q not found", name)
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
