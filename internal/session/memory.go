package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	userID  int64
	expires time.Time
}

// MemoryStore is a process-local Store for single-instance deployments and
// tests. It honors the same contract as RedisStore but sessions die with the
// process.
type MemoryStore struct {
	codec *Codec
	ttl   time.Duration
	now   func() time.Time

	mu     sync.Mutex
	tokens map[string]memoryEntry
}

// NewMemoryStore builds an in-process store with the given fixed TTL.
func NewMemoryStore(codec *Codec, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		codec:  codec,
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]memoryEntry),
	}
}

// Create issues a signed token, pruning any already-expired entries while the
// lock is held.
func (s *MemoryStore) Create(_ context.Context, userID int64) (string, error) {
	token, err := s.codec.Issue()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.tokens {
		if now.After(entry.expires) {
			delete(s.tokens, key)
		}
	}

	s.tokens[token] = memoryEntry{userID: userID, expires: now.Add(s.ttl)}
	return token, nil
}

// Resolve returns the owning user id for a live token.
func (s *MemoryStore) Resolve(_ context.Context, token string) (int64, bool) {
	if !s.codec.Verify(token) {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok || s.now().After(entry.expires) {
		delete(s.tokens, token)
		return 0, false
	}
	return entry.userID, true
}

// Revoke deletes the token mapping. Revoking an unknown token is a no-op.
func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
