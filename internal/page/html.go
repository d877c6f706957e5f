package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"seconds": formatSeconds,
}).ParseFS(templateFS, "templates/*.html"))

// formatSeconds prints a server time without exponent notation.
func formatSeconds(t domain.TimeValue) string {
	return strconv.FormatFloat(float64(t), 'f', -1, 64)
}

// WriteHTML renders v as the full HTML document.
func WriteHTML(w io.Writer, v View) error {
	if err := pageTemplate.ExecuteTemplate(w, "page.html", v); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	return nil
}

// WriteRegistrationHTML renders only the registration area, for the form to
// swap in after its callback.
func WriteRegistrationHTML(w io.Writer, v View) error {
	if err := pageTemplate.ExecuteTemplate(w, "registration", v); err != nil {
		return fmt.Errorf("execute registration template: %w", err)
	}
	return nil
}

// WriteAboutHTML renders the "Om oss" page.
func WriteAboutHTML(w io.Writer) error {
	v := StaticView{Title: "Om oss", Navigation: Navigation}
	if err := pageTemplate.ExecuteTemplate(w, "about.html", v); err != nil {
		return fmt.Errorf("execute about template: %w", err)
	}
	return nil
}

// WritePressHTML renders the "I media" page.
func WritePressHTML(w io.Writer) error {
	v := StaticView{Title: "I media", Navigation: Navigation, Press: Press}
	if err := pageTemplate.ExecuteTemplate(w, "press.html", v); err != nil {
		return fmt.Errorf("execute press template: %w", err)
	}
	return nil
}
