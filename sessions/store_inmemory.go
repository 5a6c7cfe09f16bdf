package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/lefeverd/openid-proxy/oauth2"
)

// InMemoryStore keeps sessions in process memory with lazy expiry.
//
// It is only safe within a single process: sessions created by one instance
// are invisible to every other, so it must not be used in any
// horizontally-scaled deployment. Use RedisStore instead.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
}

type inMemoryEntry struct {
	tokens    oauth2.TokenResponse
	expiresAt time.Time // zero means no expiry
}

// NewInMemoryStore creates a new in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]inMemoryEntry),
	}
}

// Create persists the token payload under the session ID.
func (s *InMemoryStore) Create(_ context.Context, sessionID string, tokens oauth2.TokenResponse, ttl time.Duration) error {
	entry := inMemoryEntry{tokens: tokens}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = entry
	return nil
}

// Get retrieves the token payload, expiring the entry lazily if its deadline
// has passed.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*oauth2.TokenResponse, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(time.Now()) {
		s.mu.Lock()
		// Re-check under the write lock; the entry may have been replaced by
		// a concurrent Create since the read above.
		if current, ok := s.entries[sessionID]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(s.entries, sessionID)
		}
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	tokens := entry.tokens
	return &tokens, nil
}

// Destroy removes the session, reporting whether an entry existed.
func (s *InMemoryStore) Destroy(_ context.Context, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	return ok
}

var _ Store = (*InMemoryStore)(nil)
