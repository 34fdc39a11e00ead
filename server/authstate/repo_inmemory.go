package authstate

import (
	"errors"
	"sync"
	"time"
)

// loginWindow is how long a pending login attempt stays valid. Long enough
// for the provider round trip, short enough that abandoned attempts don't
// accumulate.
const loginWindow = 10 * time.Minute

// ErrNotFound is returned for unknown, replayed or expired state tokens.
var ErrNotFound = errors.New("auth state not found")

// InMemoryRepo is a thread-safe in-memory implementation of Repo.
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{states: make(map[string]*State)}
}

func (r *InMemoryRepo) Upsert(state string, record *State) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if record == nil {
		return errors.New("record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *record
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	r.states[state] = &copied
	return nil
}

// Consume returns the record for state and removes it, so a replayed callback
// with the same state fails.
func (r *InMemoryRepo) Consume(state string) (*State, error) {
	if state == "" {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.states[state]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.states, state)

	if time.Since(record.CreatedAt) > loginWindow {
		return nil, ErrNotFound
	}

	copied := *record
	return &copied, nil
}
