package authstate

import "time"

// State is the short-lived record for one in-flight login attempt. The state
// token correlates the provider callback with this attempt; the verifier is
// the PKCE secret whose challenge was sent at initiation.
//
// Single-use: the record is deleted at the callback regardless of how the
// exchange turns out.
type State struct {
	State        string
	CodeVerifier string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, record *State) error
	// Consume atomically returns and deletes the record for state.
	Consume(state string) (*State, error)
}
