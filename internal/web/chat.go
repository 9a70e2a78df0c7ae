// ABOUTME: Dashboard and chat panel handlers
// ABOUTME: Sends are accepted synchronously and settle in the background; the page polls until done

package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/chat"
)

// panelView is the template data for one chat panel
type panelView struct {
	Kind      chat.Kind
	State     chat.State
	Agents    []chat.ChatAgent
	CSRFToken string
	Nonce     string
}

// Empty reports whether the agent picker grid should be shown
func (v panelView) Empty() bool {
	return len(v.State.Messages) == 0
}

// IsTeam reports whether this is the team panel
func (v panelView) IsTeam() bool {
	return v.Kind == chat.KindTeam
}

type dashboardData struct {
	Tab        string
	Panel      panelView
	BackendURL string
}

func (s *Web) panelView(r *http.Request, p *chat.Panel) panelView {
	return panelView{
		Kind:      p.Kind(),
		State:     p.State(),
		Agents:    chat.Agents(),
		CSRFToken: getCSRFToken(r),
		Nonce:     s.newNonce(),
	}
}

// panelFor resolves the {kind} path segment to the session's panel
func (s *Web) panelFor(r *http.Request) (*chat.Panel, error) {
	kind, err := chat.ParseKind(r.PathValue("kind"))
	if err != nil {
		return nil, err
	}
	return s.hub.Panel(sessionID(r), kind), nil
}

func panelURL(kind chat.Kind) string {
	return "/?tab=" + string(kind)
}

// handleDashboard renders the assistant suite with the selected tab's panel
func (s *Web) handleDashboard(w http.ResponseWriter, r *http.Request) {
	kind, err := chat.ParseKind(r.URL.Query().Get("tab"))
	if err != nil {
		kind = chat.KindSingle
	}
	sid := sessionID(r)
	p := s.hub.Panel(sid, kind)

	toasts := append(s.flashes.take(sid), p.TakeNotifications()...)
	s.render.page(w, http.StatusOK, "dashboard.html", PageData{
		Title:       "AI Assistant Suite",
		CurrentPath: "/",
		CSRFToken:   getCSRFToken(r),
		Toasts:      toasts,
		Data: dashboardData{
			Tab:        string(kind),
			Panel:      s.panelView(r, p),
			BackendURL: s.config.BackendURL,
		},
	})
}

// handleChatSend accepts a message on a panel
func (s *Web) handleChatSend(w http.ResponseWriter, r *http.Request) {
	p, err := s.panelFor(r)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if !s.claimNonce(r) {
		redirect(w, r, panelURL(p.Kind()))
		return
	}

	err = s.hub.Dispatch(p, r.FormValue("message"))
	switch {
	case err == nil, errors.Is(err, chat.ErrEmptyInput):
		redirect(w, r, panelURL(p.Kind()))
	case errors.Is(err, chat.ErrBusy):
		http.Error(w, "A response is still loading", http.StatusConflict)
	default:
		s.logger.Error("failed to dispatch message", "panel", string(p.Kind()), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleChatMessages renders the message list fragment polled while loading
func (s *Web) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	p, err := s.panelFor(r)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	view := s.panelView(r, p)
	w.Header().Set("X-Panel-Loading", strconv.FormatBool(view.State.Loading))
	w.Header().Set("Cache-Control", "no-store")
	s.render.fragment(w, "messages", view)
}

// handleChatSelect changes the agent or mode a panel targets
func (s *Web) handleChatSelect(w http.ResponseWriter, r *http.Request) {
	p, err := s.panelFor(r)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if err := p.Select(r.FormValue("agent")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	redirect(w, r, panelURL(p.Kind()))
}

// handleChatDefault marks (or clears) the panel's default agent
func (s *Web) handleChatDefault(w http.ResponseWriter, r *http.Request) {
	p, err := s.panelFor(r)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if err := p.SetDefault(r.FormValue("agent")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	redirect(w, r, panelURL(p.Kind()))
}

// handleChatReset starts a new conversation on one panel
func (s *Web) handleChatReset(w http.ResponseWriter, r *http.Request) {
	p, err := s.panelFor(r)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	p.Reset()
	redirect(w, r, panelURL(p.Kind()))
}

// handleNewChat resets both panels of the session
func (s *Web) handleNewChat(w http.ResponseWriter, r *http.Request) {
	s.hub.ResetSession(sessionID(r))
	redirect(w, r, "/")
}
