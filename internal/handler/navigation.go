package handler

import (
	"errors"
	"log"
	"net/http"

	"ubae_shell/internal/guard"
	"ubae_shell/internal/httputil"
	"ubae_shell/internal/session"
)

// SessionReader yields the current session snapshot.
type SessionReader interface {
	Current() session.Session
}

// NavigationResult is the guard's answer for one navigation.
type NavigationResult struct {
	Path       string           `json:"path"`
	Navigation guard.Navigation `json:"navigation"`
	Session    session.Session  `json:"session"`
}

// NavigationHandler exposes the session and the route guard to clients that
// render pages themselves.
type NavigationHandler struct {
	sessions SessionReader
}

func NewNavigationHandler(sessions SessionReader) *NavigationHandler {
	return &NavigationHandler{sessions: sessions}
}

// Session returns the current session.
// GET /api/session
func (h *NavigationHandler) Session(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.sessions.Current())
}

// Navigate settles the guard for ?path= against the current session.
// GET /api/navigate?path=/notifications
func (h *NavigationHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	s := h.sessions.Current()

	nav, err := guard.Settle(path, s.AccessLevel(), s.Loading)
	if err != nil {
		if errors.Is(err, guard.ErrRedirectLoop) {
			log.Printf("[Navigation] Settle FAILED: path=%s err=%v", path, err)
			httputil.WriteInternalError(w, "Navigation did not settle")
			return
		}
		httputil.WriteInternalError(w, "Failed to evaluate navigation")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, NavigationResult{
		Path:       path,
		Navigation: nav,
		Session:    s,
	})
}
