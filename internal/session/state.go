package session

import "github.com/alexanderramin/punchclock/internal/domain"

// Status is the coarse authentication status.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAnonymous     Status = "anonymous"
	StatusAuthenticated Status = "authenticated"
)

// State is a snapshot of the session. Identity is set only when
// authenticated. Verified is false while the identity comes from the local
// cache because the backend has not confirmed it yet.
type State struct {
	Status   Status
	Identity *domain.Identity
	Verified bool
}

func loading() State   { return State{Status: StatusLoading} }
func anonymous() State { return State{Status: StatusAnonymous} }

func authenticated(id domain.Identity, verified bool) State {
	return State{Status: StatusAuthenticated, Identity: &id, Verified: verified}
}

// Authenticated reports whether the state carries an identity.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
