package auth

import "context"

// State is the session identity state for a request.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

// Session is the per-request identity. UserID and Username are only
// set when State is StateAuthenticated.
type Session struct {
	State    State
	UserID   string
	Username string
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{State: StateAnonymous}
}

// Authenticated returns a session bound to the given account.
func Authenticated(userID, username string) Session {
	return Session{State: StateAuthenticated, UserID: userID, Username: username}
}

// IsAuthenticated reports whether the session is bound to an account.
func (s Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated
}

type contextKey string

const sessionKey = contextKey("session")

// WithSession stores the session on a context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session for a request, defaulting to the
// anonymous session when none was attached.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey).(Session); ok {
		return s
	}
	return Anonymous()
}
