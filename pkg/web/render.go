package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/languages"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "templates/layout.html"

type renderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"langName": languages.Name,
	"upper":    strings.ToUpper,
	"add":      func(a, b int) int { return a + b },
}

func newRenderer() (*renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	pages := make(map[string]*template.Template)
	for _, file := range files {
		if file == layoutTemplate {
			continue
		}
		tmpl, err := template.New(path.Base(file)).Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		pages[path.Base(file)] = tmpl
	}
	return &renderer{pages: pages}, nil
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// render adds the logged-in student and pending flashes to data.
func (s *Server) render(c echo.Context, status int, name, title string, data map[string]any) error {
	if data == nil {
		data = make(map[string]any)
	}
	data["Title"] = title
	data["Student"] = currentStudent(c)
	data["Flashes"] = s.takeFlashes(c)
	return c.Render(status, name, data)
}

func errorStatus(err error) int {
	if apperr.IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// redirectWithFlash records err (or success) and redirects to target.
func (s *Server) redirectWithFlash(c echo.Context, target string, err error, success string) error {
	if err != nil {
		s.flash(c, flashError, apperr.Message(err))
	} else {
		s.flash(c, flashSuccess, success)
	}
	return c.Redirect(http.StatusSeeOther, target)
}
