package context

import (
	"context"

	"github.com/rahul4469/propmate/internal/session"
)

type contextkey string

const (
	sessionKey contextkey = "session"
)

// ContextSetSession binds the visitor's session to ctx.
func ContextSetSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// ContextGetSession retrieves the session from request context.
// Returns nil if no session is set.
func ContextGetSession(ctx context.Context) *session.Session {
	val := ctx.Value(sessionKey)
	sess, ok := val.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
