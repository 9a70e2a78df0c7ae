// ABOUTME: Fixed informational pages and the not-found fallback

package web

import (
	"net/http"
)

func (s *Web) handleStaticPage(p staticPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render.page(w, http.StatusOK, "static.html", PageData{
			Title:       p.Title,
			CurrentPath: p.Path,
			CSRFToken:   getCSRFToken(r),
			Toasts:      s.flashes.take(sessionID(r)),
			Data:        p,
		})
	}
}

// handleNotFound renders the 404 page for any unmatched path
func (s *Web) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("route not found", "method", r.Method, "path", r.URL.Path)
	s.render.page(w, http.StatusNotFound, "not_found.html", PageData{
		Title:       "Page not found",
		CurrentPath: r.URL.Path,
		CSRFToken:   getCSRFToken(r),
		Data:        r.URL.Path,
	})
}
