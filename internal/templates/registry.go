// Package templates holds the fixed set of resume layouts and the registry
// that maps a template key to one of them.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"resume-builder/internal/model"
)

//go:embed layouts/*.html style.css
var files embed.FS

// ID identifies one of the known layouts.
type ID int

const (
	Base ID = iota
	Minimal
	Modern

	numIDs
)

// Default is used whenever a key does not name a known layout.
const Default = Base

var keys = [numIDs]string{
	Base:    "base",
	Minimal: "minimal",
	Modern:  "modern",
}

var names = [numIDs]string{
	Base:    "Base",
	Minimal: "Minimal",
	Modern:  "Modern",
}

func (id ID) String() string {
	if id < 0 || id >= numIDs {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return keys[id]
}

// ParseID maps a template key to its ID.
func ParseID(key string) (ID, bool) {
	for id, k := range keys {
		if k == key {
			return ID(id), true
		}
	}
	return Default, false
}

// Template renders a ResumeData in one layout.
type Template struct {
	id    ID
	tpl   *template.Template
	style template.CSS
}

func (t *Template) ID() ID       { return t.id }
func (t *Template) Key() string  { return keys[t.id] }
func (t *Template) Name() string { return names[t.id] }

type view struct {
	Resume   model.ResumeData
	ReadOnly bool
	Style    template.CSS
	Message  string
}

// Render writes the complete document to w. Nothing is written if execution
// fails part way.
func (t *Template) Render(w io.Writer, data model.ResumeData, readOnly bool) error {
	var buf bytes.Buffer
	v := view{Resume: data, ReadOnly: readOnly, Style: t.style}
	if err := t.tpl.ExecuteTemplate(&buf, t.Key(), v); err != nil {
		return fmt.Errorf("render %s template: %w", t.Key(), err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Registry is the closed mapping from ID to Template.
type Registry struct {
	templates [numIDs]*Template
	status    *template.Template
	style     template.CSS
}

// NewRegistry parses every embedded layout.
func NewRegistry() (*Registry, error) {
	css, err := files.ReadFile("style.css")
	if err != nil {
		return nil, err
	}
	r := &Registry{style: template.CSS(css)}
	for id := Base; id < numIDs; id++ {
		tpl, err := template.ParseFS(files, "layouts/partials.html", "layouts/"+keys[id]+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s layout: %w", keys[id], err)
		}
		r.templates[id] = &Template{id: id, tpl: tpl, style: r.style}
	}

	r.status, err = template.ParseFS(files, "layouts/status.html")
	if err != nil {
		return nil, fmt.Errorf("parse status pages: %w", err)
	}
	return r, nil
}

// MustRegistry is NewRegistry for package level initialisation; the layouts
// are embedded so a parse failure is a programming error.
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the template for id, or the default one if id is out of range.
func (r *Registry) Get(id ID) *Template {
	switch id {
	case Base, Minimal, Modern:
		return r.templates[id]
	default:
		return r.templates[Default]
	}
}

// Lookup resolves a template key. Unknown keys are not an error: they yield
// the default layout.
func (r *Registry) Lookup(key string) *Template {
	id, _ := ParseID(key)
	return r.Get(id)
}

// List returns all templates in declaration order.
func (r *Registry) List() []*Template {
	out := make([]*Template, 0, numIDs)
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out
}

// RenderLoading writes the neutral progress page.
func (r *Registry) RenderLoading(w io.Writer) error {
	return r.renderStatus(w, "loading", "")
}

// RenderError writes a page showing msg.
func (r *Registry) RenderError(w io.Writer, msg string) error {
	return r.renderStatus(w, "error", msg)
}

func (r *Registry) renderStatus(w io.Writer, name, msg string) error {
	var buf bytes.Buffer
	if err := r.status.ExecuteTemplate(&buf, name, view{Style: r.style, Message: msg}); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
