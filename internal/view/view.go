// Package view renders server-side HTML pages from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageRegister          = "register"
	PageLogin             = "login"
	PageDashboard         = "dashboard"
	PageUser              = "user"
	PageAccount           = "account"
	PageProducts          = "products"
	PageCustomer          = "customer"
	PageOrderBatch        = "order_batch"
	PageOrderForm         = "order_form"
	PageDelete            = "delete"
	PagePasswordReset     = "password_reset"
	PagePasswordResetSent = "password_reset_sent"
	PagePasswordResetForm = "password_reset_form"
	PagePasswordResetDone = "password_reset_done"
	PageError             = "error"
)

// Page is the data every template receives. Data holds the page's
// view-model.
type Page struct {
	Title    string
	Identity domain.Identity
	Flashes  []session.Flash
	Data     any
}

// Renderer writes a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, page *Page) error
}

// Templates renders pages parsed from the embedded template set. Each page
// is parsed together with the shared layout.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[key] = kv[i+1]
		}
		return m, nil
	},
	"rowName": func(i int, field string) string {
		return fmt.Sprintf("form-%d-%s", i, field)
	},
	"selected": func(a, b any) template.HTMLAttr {
		if fmt.Sprint(a) == fmt.Sprint(b) {
			return "selected"
		}
		return ""
	},
}

// New parses all embedded pages.
func New() (*Templates, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	t := &Templates{pages: make(map[string]*template.Template)}
	for _, file := range names {
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		if name == "layout" {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
