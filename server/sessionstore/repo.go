package sessionstore

import "time"

// Record identifies an authenticated principal for the lifetime of a browser
// session. It exists only after a successful authorization-code exchange;
// absence means unauthenticated.
type Record struct {
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	ObjectID          string `json:"oid"`
	TenantID          string `json:"tid"`

	CreatedAt time.Time `json:"-"`
}

// Repo is the process-wide session store, keyed by the opaque session id
// delivered via cookie. Delete is synchronous: once it returns, a lookup on
// the same process will miss, so a cookie-clear and redirect can be sequenced
// after it.
type Repo interface {
	Get(sessionID string) (Record, error)
	Set(sessionID string, record Record) error
	Delete(sessionID string) error
}
