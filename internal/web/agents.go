// ABOUTME: Agent configuration screen handlers
// ABOUTME: Lists presets, toggles their sources, selects the detail view and creates new presets

package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/agents"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/chat"
)

type agentsData struct {
	Agents     []agents.Preset
	Selected   *agents.Preset
	Draft      agents.Draft
	ShowCreate bool
	CSRFToken  string
}

func (s *Web) renderAgents(w http.ResponseWriter, r *http.Request, status int, draft agents.Draft, showCreate bool, extra ...chat.Notification) {
	data := agentsData{
		Agents:     s.agents.List(),
		Draft:      draft,
		ShowCreate: showCreate,
		CSRFToken:  getCSRFToken(r),
	}
	if sel, ok := s.agents.Selected(sessionID(r)); ok {
		data.Selected = &sel
	}

	page := PageData{
		Title:       "Knowledge Agents",
		CurrentPath: "/agents",
		CSRFToken:   getCSRFToken(r),
		Toasts:      s.flashes.take(sessionID(r)),
		Data:        data,
	}
	page.Toasts = append(page.Toasts, extra...)
	s.render.page(w, status, "agents.html", page)
}

// handleAgentsPage renders the preset list. ?new=1 opens the creation dialog.
func (s *Web) handleAgentsPage(w http.ResponseWriter, r *http.Request) {
	s.renderAgents(w, r, http.StatusOK, agents.Draft{}, r.URL.Query().Get("new") == "1")
}

// handleAgentCreate appends a preset from the creation dialog
func (s *Web) handleAgentCreate(w http.ResponseWriter, r *http.Request) {
	draft := agents.Draft{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Tone:        r.FormValue("tone"),
		Prompt:      r.FormValue("prompt"),
	}

	p, err := s.agents.Create(draft)
	if errors.Is(err, agents.ErrNameRequired) {
		s.renderAgents(w, r, http.StatusUnprocessableEntity, draft, true, errorToast("Agent name is required"))
		return
	}
	if err != nil {
		s.logger.Error("failed to create agent", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.flashes.add(sessionID(r), successToast(p.Name+" agent created"))
	redirect(w, r, "/agents")
}

// handleAgentSelect switches this session's detail view to a preset
func (s *Web) handleAgentSelect(w http.ResponseWriter, r *http.Request) {
	if err := s.agents.Select(sessionID(r), r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	redirect(w, r, "/agents")
}

// handleAgentToggle flips one source switch on a preset
func (s *Web) handleAgentToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid source index", http.StatusBadRequest)
		return
	}
	if _, err := s.agents.Toggle(id, index); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	redirect(w, r, "/agents#agent-"+id)
}
