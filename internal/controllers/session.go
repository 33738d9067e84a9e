package controllers

import (
	"net/http"

	"github.com/rahul4469/propmate/internal/middleware"
	"github.com/rahul4469/propmate/internal/session"
	"github.com/rahul4469/propmate/internal/views"
)

// SessionController exposes the visitor's session and its status bar.
type SessionController struct {
	store    *session.Store
	sessions *middleware.SessionMiddleware
}

func NewSessionController(store *session.Store, sessions *middleware.SessionMiddleware) *SessionController {
	return &SessionController{store: store, sessions: sessions}
}

// GetSession identifies the current session.
func (c *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)
	views.JSON(w, http.StatusOK, views.SessionView{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: c.store.ExpiresAt(sess),
	})
}

// DeleteSession discards all session state; the next request starts afresh.
func (c *SessionController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	c.sessions.EndSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// GetStatus returns the last recorded durations.
func (c *SessionController) GetStatus(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)
	views.JSON(w, http.StatusOK, views.NewStatusView(sess.Timings(), sess.Property.AnalysisCount()))
}
