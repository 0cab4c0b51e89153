// Package templates renders full pages from embedded HTML templates and
// exposes HTMX fragments as templ components.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Page carries shared chrome state plus per-page data.
type Page struct {
	Title      string
	SignedIn   bool
	Admin      bool
	ActivePath string
	Data       any
}

// Render writes one named page template wrapped in the site layout.
func Render(w io.Writer, name string, page Page) error {
	if page.Title == "" {
		page.Title = "Fab The Stretch Lad"
	}
	if err := pages.ExecuteTemplate(w, name, page); err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}
	return nil
}
