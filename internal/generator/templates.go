package generator

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplateRenderer renders page templates with html/template. All files
// matching *.html in the source filesystem form one template set, so
// pages can call partials defined in any file.
type TemplateRenderer struct {
	fsys fs.FS
	once sync.Once
	tpl  *template.Template
	err  error
}

var _ interfaces.TemplateRenderer = (*TemplateRenderer)(nil)

// NewTemplateRenderer returns a renderer over the built-in templates.
func NewTemplateRenderer() *TemplateRenderer {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return &TemplateRenderer{err: err}
	}
	return NewTemplateRendererFS(sub)
}

// NewTemplateRendererFS returns a renderer over the *.html files at the
// root of fsys. Templates are parsed on first use.
func NewTemplateRendererFS(fsys fs.FS) *TemplateRenderer {
	return &TemplateRenderer{fsys: fsys}
}

func (r *TemplateRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		if r.err != nil {
			return
		}
		if r.fsys == nil {
			r.err = fmt.Errorf("generator: template filesystem is required")
			return
		}
		r.tpl, r.err = template.New("lagstiftning").Funcs(templateFuncs()).ParseFS(r.fsys, "*.html")
	})
	return r.tpl, r.err
}

// RenderTemplate executes the named template. When out is supplied the
// result is written there and the returned string is empty.
func (r *TemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("template %q not found", name)
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteTemplate(writer, name, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"isHeading": func(t revisions.ElementType) bool { return t.IsHeading() },
		"rowClass": func(t revisions.ElementType) string {
			return strings.ReplaceAll(string(t), "_", "-")
		},
		"lastCrumb": func(index int, crumbs []Breadcrumb) bool { return index == len(crumbs)-1 },
	}
}
