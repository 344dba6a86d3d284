package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/navigation"
	"gymportal/internal/domain/trainingsession"
	"gymportal/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pageSet holds one parsed template per page, each joined with the layout.
type pageSet struct {
	byName map[string]*template.Template
}

// newMarkdown returns a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
	)
}

var templateFuncs = template.FuncMap{
	"statusLabel": func(st trainingsession.Status) string {
		if st == trainingsession.StatusInProgress {
			return "In progress"
		}
		s := string(st)
		if s == "" {
			return ""
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"validStatuses": func() []trainingsession.Status { return trainingsession.ValidStatuses },
	"nextStatuses": func(from trainingsession.Status) []trainingsession.Status {
		var out []trainingsession.Status
		for _, to := range trainingsession.ValidStatuses {
			if trainingsession.CanTransition(from, to) {
				out = append(out, to)
			}
		}
		return out
	},
}

// loadPages parses every page with the layout. markdown renders trainer notes.
func loadPages(markdown func(string) template.HTML) (*pageSet, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	set := &pageSet{byName: make(map[string]*template.Template)}
	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == "layout.html" {
			continue
		}
		tpl, err := template.New("layout.html").
			Funcs(templateFuncs).
			Funcs(template.FuncMap{"markdown": markdown}).
			ParseFS(templateFS, "templates/layout.html", path)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		set.byName[name] = tpl
	}
	return set, nil
}

// navLink is a menu entry with its highlight state for the current page.
type navLink struct {
	navigation.NavItem
	Active bool
}

// pageData is what every page template receives.
type pageData struct {
	Title         string
	Nav           []navLink
	SignedIn      bool
	UserName      string
	Role          account.Role
	Impersonating bool
	RealAdmin     bool
	Roles         []account.Role
	CSRFField     template.HTML
	Content       any
}

// renderMarkdown converts trainer notes to HTML; raw HTML in the input is escaped.
func (s *Server) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// render executes page inside the layout with the menu for the current role.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, content any) {
	tpl, ok := s.pages.byName[page]
	if !ok {
		s.internalError(w, r, fmt.Errorf("unknown template %q", page))
		return
	}

	data := pageData{
		Title:     title,
		Roles:     account.Roles,
		CSRFField: csrf.TemplateField(r),
		Content:   content,
	}
	var role account.Role
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		role = sess.Role
		data.SignedIn = true
		data.UserName = sess.Name
		data.Role = sess.Role
		data.Impersonating = sess.IsImpersonating()
		data.RealAdmin = sess.IsRealAdmin()
	}
	for _, item := range navigation.For(role) {
		data.Nav = append(data.Nav, navLink{NavItem: item, Active: navigation.IsActive(item, r.URL.Path)})
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		s.internalError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// placeholder serves a static page for views that have no content yet.
func (s *Server) placeholder(title, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "placeholder.html", title, message)
	}
}

// internalError logs the real error and returns a generic message to the client.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("internal_error", "error", err.Error(), "path", r.URL.Path)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
