package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/users"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	contentTypeHTML = "text/html; charset=utf-8"
	layoutTemplate  = "layout.html"
)

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
}

// ParseTemplate parses a page together with the shared layout. Pages define a "content" block.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

// mustParseTemplate is used while routes are registered; a broken embedded template is a
// build defect.
func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

// PageData is what every page template receives.
type PageData struct {
	AppName string
	Title   string
	Error   string
	Message string
	Role    string
	User    *users.User
	Data    any
}

func (s *Server) newPageData(r *http.Request, title string, data any) PageData {
	page := PageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Error:   r.URL.Query().Get("error"),
		Message: r.URL.Query().Get("message"),
		Data:    data,
	}
	if sess, ok := currentSession(r); ok {
		page.Role = sess.User.Role.String()
		page.User = &sess.User
	}
	return page
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, data PageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
