package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/rahul4469/propmate/context"
	"github.com/rahul4469/propmate/internal/models"
	"github.com/rahul4469/propmate/internal/session"
	"github.com/rahul4469/propmate/internal/views"
	"go.uber.org/zap"
)

type SessionMiddleware struct {
	store      *session.Store
	codec      *securecookie.SecureCookie
	cookieName string
	secure     bool
	maxAge     time.Duration
	logger     *zap.Logger
}

// NewSessionMiddleware signs session ids with hashKey. An empty key gets a
// random one, so cookies only survive for the life of the process.
func NewSessionMiddleware(store *session.Store, hashKey []byte, cookieName string, secure bool, maxAge time.Duration, logger *zap.Logger) *SessionMiddleware {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(maxAge.Seconds()))

	return &SessionMiddleware{
		store:      store,
		codec:      codec,
		cookieName: cookieName,
		secure:     secure,
		maxAge:     maxAge,
		logger:     logger,
	}
}

// SetSession loads the visitor's session from the signed cookie, starting a
// new one when the cookie is missing, tampered with or expired.
// This middleware should run on ALL API routes.
func (m *SessionMiddleware) SetSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.lookup(r)
		if sess == nil {
			sess = m.store.Create()
			if err := m.setCookie(w, sess.ID); err != nil {
				m.logger.Error("failed to encode session cookie", zap.Error(err))
				views.Error(w, http.StatusInternalServerError, views.CodeInternal, "Failed to start session")
				return
			}
		}

		ctx := context.ContextSetSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects requests that reached it without a session.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if context.ContextGetSession(r.Context()) == nil {
			views.Error(w, http.StatusUnauthorized, views.CodeUnauthorized, "No active session")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EndSession drops the current session and clears its cookie.
func (m *SessionMiddleware) EndSession(w http.ResponseWriter, r *http.Request) {
	if sess := context.ContextGetSession(r.Context()); sess != nil {
		m.store.Delete(sess.ID)
	}
	m.deleteCookie(w)
}

func (m *SessionMiddleware) lookup(r *http.Request) *session.Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil
	}

	var id string
	if err := m.codec.Decode(m.cookieName, cookie.Value, &id); err != nil {
		m.logger.Debug("rejected session cookie", zap.Error(err))
		return nil
	}

	sess, err := m.store.Get(id)
	if err != nil {
		if !errors.Is(err, models.ErrSessionNotFound) && !errors.Is(err, models.ErrSessionExpired) {
			m.logger.Warn("session lookup failed", zap.Error(err))
		}
		return nil
	}
	return sess
}

// CurrentSession is a helper to get the session from any handler.
func CurrentSession(r *http.Request) *session.Session {
	return context.ContextGetSession(r.Context())
}

// MustCurrentSession is like CurrentSession but panics if no session is found.
// Only use this in handlers protected by RequireSession middleware.
func MustCurrentSession(r *http.Request) *session.Session {
	sess := context.ContextGetSession(r.Context())
	if sess == nil {
		panic("MustCurrentSession called without RequireSession middleware")
	}
	return sess
}
