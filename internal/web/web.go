// ABOUTME: Dashboard HTTP surface: navigation shell, chat panels, agents, sources and static pages
// ABOUTME: Server-rendered html/template pages with a session cookie and CSRF-protected forms

package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/agents"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/assets"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/chat"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/dedupe"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/markdown"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/session"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/sources"
)

const (
	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "copilot_csrf"

	// nonceTTL bounds how long a rendered form's nonce guards against replays
	nonceTTL = 10 * time.Minute

	// nonceCacheSize caps remembered nonces
	nonceCacheSize = 10_000
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	csrfContextKey    contextKey = "csrf"
)

// Config holds web configuration
type Config struct {
	// BackendURL is shown on the dashboard so users know where questions go
	BackendURL string
}

// Web handles every dashboard route
type Web struct {
	hub     *chat.Hub
	agents  *agents.Store
	sources *sources.Service
	signer  *session.Signer
	render  *renderer
	nonces  *dedupe.Cache
	flashes *flashStore
	config  Config
	logger  *slog.Logger
}

// New creates the dashboard handler. Templates are parsed once here and a
// parse failure is returned.
func New(hub *chat.Hub, agentStore *agents.Store, sourceSvc *sources.Service, signer *session.Signer, cfg Config) (*Web, error) {
	logger := slog.Default().With("component", "web")

	r, err := newRenderer(markdown.New(logger), logger)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return &Web{
		hub:     hub,
		agents:  agentStore,
		sources: sourceSvc,
		signer:  signer,
		render:  r,
		nonces:  dedupe.New(nonceTTL, nonceCacheSize),
		flashes: newFlashStore(flashTTL),
		config:  cfg,
		logger:  logger,
	}, nil
}

// Close releases background resources
func (s *Web) Close() {
	s.nonces.Close()
}

// RegisterRoutes registers all dashboard routes on the given mux
func (s *Web) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /static/", http.StripPrefix("/static", assets.FileServer()))

	mux.HandleFunc("GET /{$}", s.page(s.handleDashboard))

	// Chat panels
	mux.HandleFunc("POST /chat/new", s.form(s.handleNewChat))
	mux.HandleFunc("POST /chat/{kind}/send", s.form(s.handleChatSend))
	mux.HandleFunc("POST /chat/{kind}/agent", s.form(s.handleChatSelect))
	mux.HandleFunc("POST /chat/{kind}/default", s.form(s.handleChatDefault))
	mux.HandleFunc("POST /chat/{kind}/reset", s.form(s.handleChatReset))
	mux.HandleFunc("GET /chat/{kind}/messages", s.page(s.handleChatMessages))

	// Agent presets
	mux.HandleFunc("GET /agents", s.page(s.handleAgentsPage))
	mux.HandleFunc("POST /agents", s.form(s.handleAgentCreate))
	mux.HandleFunc("POST /agents/{id}/select", s.form(s.handleAgentSelect))
	mux.HandleFunc("POST /agents/{id}/sources/{index}/toggle", s.form(s.handleAgentToggle))

	// Sources
	mux.HandleFunc("GET /sources", s.page(s.handleSourcesPage))
	mux.HandleFunc("GET /sources/{id}/connect", s.page(s.handleSourceConnect))
	mux.HandleFunc("POST /sources/{id}/token", s.form(s.handleSourceToken))
	mux.HandleFunc("POST /sources/{id}/disconnect", s.form(s.handleSourceDisconnect))

	// Static content
	for _, p := range staticPages {
		mux.HandleFunc("GET "+p.Path, s.page(s.handleStaticPage(p)))
	}

	// Everything else, including unimplemented sidebar tools
	mux.HandleFunc("/", s.page(s.handleNotFound))

	s.logger.Info("dashboard routes registered")
}

// page wraps a GET handler with session and CSRF cookie setup
func (s *Web) page(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, ok := s.withSession(w, r)
		if !ok {
			return
		}
		r, _ = s.ensureCSRFToken(w, r)
		next(w, r)
	}
}

// form wraps a POST handler with session setup and CSRF validation
func (s *Web) form(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, ok := s.withSession(w, r)
		if !ok {
			return
		}
		if !s.validateCSRF(r) {
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}
		r, _ = s.ensureCSRFToken(w, r)
		next(w, r)
	}
}

func (s *Web) withSession(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	id, err := s.signer.Ensure(w, r)
	if err != nil {
		s.logger.Error("failed to establish session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return r, false
	}
	return r.WithContext(context.WithValue(r.Context(), sessionContextKey, id)), true
}

// sessionID returns the session id set by page or form
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionContextKey).(string)
	return id
}

// claimNonce reports whether the form submission should be applied. Forms
// without a nonce are always applied.
func (s *Web) claimNonce(r *http.Request) bool {
	n := r.FormValue("nonce")
	if n == "" {
		return true
	}
	return s.nonces.Claim(sessionID(r) + "|" + n)
}

func (s *Web) newNonce() string {
	n, err := session.RandomToken(16)
	if err != nil {
		s.logger.Error("failed to generate form nonce", "error", err)
		return ""
	}
	return n
}

// redirect sends the browser back to a page after a form post
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, agents.ErrAgentNotFound),
		errors.Is(err, sources.ErrUnknownSource),
		errors.Is(err, chat.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrUnknownAgent),
		errors.Is(err, agents.ErrSourceIndex):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, agents.ErrNameRequired),
		errors.Is(err, sources.ErrEmptyToken):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
