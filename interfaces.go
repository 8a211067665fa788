package dirverify

import "context"

// Directory opens sessions against a directory server. *Client is the
// production implementation; tests substitute in-memory fakes.
type Directory interface {
	Session(ctx context.Context) (Session, error)
}

// Session is one bound directory session with explicit lifecycle control.
// Its lifecycle is service-bound on creation, optionally rebound as an end
// user, and closed exactly once on every exit path.
type Session interface {
	// Search runs one subtree search and returns the matching records.
	// The result is finite and bounded by the configured size/time limits.
	Search(ctx context.Context, filter string, attributes []string) ([]Record, error)
	// Rebind re-authenticates the session as the given principal.
	Rebind(ctx context.Context, dn, password string) error
	// Close releases the session. Safe to call on broken sessions.
	Close()
}
