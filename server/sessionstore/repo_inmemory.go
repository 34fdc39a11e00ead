package sessionstore

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// InMemoryRepo is a thread-safe in-memory session store with a fixed TTL.
type InMemoryRepo struct {
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]Record
}

// NewInMemoryRepo creates a session store. ttl <= 0 disables expiry.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		ttl:      ttl,
		sessions: make(map[string]Record),
	}
}

func (r *InMemoryRepo) Get(sessionID string) (Record, error) {
	if sessionID == "" {
		return Record{}, ErrNotFound
	}

	r.mu.RLock()
	record, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}

	if r.ttl > 0 && time.Since(record.CreatedAt) > r.ttl {
		r.mu.Lock()
		delete(r.sessions, sessionID)
		r.mu.Unlock()
		return Record{}, ErrNotFound
	}

	return record, nil
}

func (r *InMemoryRepo) Set(sessionID string, record Record) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = record
	return nil
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
