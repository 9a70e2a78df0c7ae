// ABOUTME: Search sources screen handlers
// ABOUTME: Filters the catalogue, opens the connect dialog and writes or removes source tokens

package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/chat"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/sources"
)

type categoryPill struct {
	ID     sources.Category
	Label  string
	Active bool
}

type sourcesData struct {
	Sources    []sources.SourceStatus
	Query      string
	Category   sources.Category
	Categories []categoryPill
	FAQ        []sources.FAQEntry
	Connect    *sources.SourceStatus
	Connected  int
	CSRFToken  string
	Nonce      string
}

// FilterQuery rebuilds the current filter as a query string for links
func (d sourcesData) FilterQuery() string {
	v := url.Values{}
	if d.Query != "" {
		v.Set("q", d.Query)
	}
	if d.Category != "" {
		v.Set("category", string(d.Category))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (s *Web) sourcesData(r *http.Request, connect string) sourcesData {
	q := r.URL.Query()
	category := sources.Category(q.Get("category"))

	pills := make([]categoryPill, 0, len(sources.Categories))
	for _, c := range sources.Categories {
		pills = append(pills, categoryPill{ID: c.ID, Label: c.Label, Active: c.ID == category})
	}

	list := s.sources.Statuses(r.Context(), sources.Filter(q.Get("q"), category))
	data := sourcesData{
		Sources:    list,
		Query:      q.Get("q"),
		Category:   category,
		Categories: pills,
		FAQ:        sources.FAQ,
		Connected:  sources.ConnectedCount(s.sources.Statuses(r.Context(), sources.All())),
		CSRFToken:  getCSRFToken(r),
		Nonce:      s.newNonce(),
	}
	if connect != "" {
		if src, ok := sources.Lookup(connect); ok {
			st := s.sources.Statuses(r.Context(), []sources.Source{src})[0]
			data.Connect = &st
		}
	}
	return data
}

func (s *Web) renderSources(w http.ResponseWriter, r *http.Request, status int, connect string, extra ...chat.Notification) {
	page := PageData{
		Title:       "Search Sources",
		CurrentPath: "/sources",
		CSRFToken:   getCSRFToken(r),
		Toasts:      append(s.flashes.take(sessionID(r)), extra...),
		Data:        s.sourcesData(r, connect),
	}
	s.render.page(w, status, "sources.html", page)
}

// handleSourcesPage renders the catalogue. ?q and ?category narrow it.
func (s *Web) handleSourcesPage(w http.ResponseWriter, r *http.Request) {
	s.renderSources(w, r, http.StatusOK, "")
}

// handleSourceConnect renders the catalogue with one source's token dialog open
func (s *Web) handleSourceConnect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := sources.Lookup(id); !ok {
		s.handleNotFound(w, r)
		return
	}
	s.renderSources(w, r, http.StatusOK, id)
}

// handleSourceToken saves the token typed into the connect dialog
func (s *Web) handleSourceToken(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.claimNonce(r) {
		redirect(w, r, "/sources")
		return
	}

	src, err := s.sources.SaveToken(r.Context(), id, r.FormValue("token"))
	switch {
	case err == nil:
		s.flashes.add(sessionID(r), successToast(sources.SavedMessage(src.Name)))
		redirect(w, r, "/sources")
	case errors.Is(err, sources.ErrUnknownSource):
		s.handleNotFound(w, r)
	case errors.Is(err, sources.ErrEmptyToken):
		s.renderSources(w, r, http.StatusUnprocessableEntity, id, errorToast(sources.MsgInvalidToken))
	default:
		s.logger.Error("failed to save source token", "source", id, "error", err)
		s.flashes.add(sessionID(r), errorToast("Failed to save "+src.Name+" token"))
		redirect(w, r, "/sources")
	}
}

// handleSourceDisconnect removes a stored token
func (s *Web) handleSourceDisconnect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	src, err := s.sources.DisconnectSource(r.Context(), id)
	switch {
	case err == nil:
		s.flashes.add(sessionID(r), successToast(sources.RemovedMessage(src.Name)))
	case errors.Is(err, sources.ErrUnknownSource):
		s.handleNotFound(w, r)
		return
	default:
		s.logger.Error("failed to disconnect source", "source", id, "error", err)
		s.flashes.add(sessionID(r), errorToast("Failed to disconnect "+src.Name))
	}
	redirect(w, r, "/sources")
}
