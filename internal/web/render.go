// ABOUTME: Template rendering for dashboard pages and fragments
// ABOUTME: Each page is parsed into its own clone of the base layout at startup

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/assets"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/chat"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/markdown"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/sources"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

var pageFiles = []string{
	"dashboard.html",
	"agents.html",
	"sources.html",
	"static.html",
	"not_found.html",
}

// PageData contains common data for all pages
type PageData struct {
	Title       string
	CurrentPath string
	CSRFToken   string
	Navigation  []NavItem
	Tools       []NavItem
	Toasts      []chat.Notification
	Data        any
}

type renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
	logger    *slog.Logger
}

func newRenderer(md *markdown.Renderer, logger *slog.Logger) (*renderer, error) {
	funcs := templateFuncs(md)

	base, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS,
		"templates/base.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone template: %w", err)
		}
		if _, err := tmpl.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &renderer{pages: pages, fragments: base, logger: logger}, nil
}

// page renders a full page inside the layout. Output is buffered so a
// template error produces a clean 500 instead of a truncated page.
func (r *renderer) page(w http.ResponseWriter, status int, name string, data PageData) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.logger.Error("unknown page template", "template", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.Navigation = navigationItems
	data.Tools = toolItems

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		r.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fragment renders one named partial without the layout
func (r *renderer) fragment(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("failed to render fragment", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func templateFuncs(md *markdown.Renderer) template.FuncMap {
	return template.FuncMap{
		"markdown": md.Render,
		"asset":    assets.URL,
		"upper":    strings.ToUpper,
		"add":      func(a, b int) int { return a + b },
		"isActive": func(current, url string) bool {
			return current == url
		},
		"selectionLabel": chat.SelectionLabel,
		"groupClass":     groupClass,
		"citationIcon":   citationIcon,
		"statusLabel":    statusLabel,
	}
}

// groupClass picks the badge colour for a team source group
func groupClass(agent string) string {
	switch strings.ToLower(agent) {
	case "jira":
		return "group-jira"
	case "notion":
		return "group-notion"
	default:
		return "group-other"
	}
}

func citationIcon(t chat.CitationType) string {
	switch t {
	case chat.CitationJira:
		return "bug"
	case chat.CitationCode:
		return "code"
	default:
		return "file"
	}
}

func statusLabel(s sources.Status) string {
	switch s {
	case sources.StatusConnected:
		return "Connected"
	case sources.StatusError:
		return "Error"
	default:
		return "Disconnected"
	}
}
