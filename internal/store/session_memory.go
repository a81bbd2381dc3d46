package store

import (
	"sync"
	"time"

	"synapse/internal/util"
)

// MemorySessionStore keeps sessions in-process with TTL expiry. Single
// instance only; used in tests and local development.
type MemorySessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	sess map[string]memorySession
}

type memorySession struct {
	userID string
	expiry time.Time
}

// NewMemorySessionStore builds an in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemorySessionStore{
		ttl:  ttl,
		sess: make(map[string]memorySession),
	}
}

// NewSession creates a session token for a user.
func (s *MemorySessionStore) NewSession(userID string) (string, error) {
	token := util.NewID()
	s.mu.Lock()
	s.sess[token] = memorySession{
		userID: userID,
		expiry: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return token, nil
}

// GetUserIDByToken resolves token to user ID, expiring lazily.
func (s *MemorySessionStore) GetUserIDByToken(token string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sess[token]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(sess.expiry) {
		delete(s.sess, token)
		return "", false, nil
	}
	return sess.userID, true, nil
}

// DeleteSession removes a token mapping.
func (s *MemorySessionStore) DeleteSession(token string) error {
	s.mu.Lock()
	delete(s.sess, token)
	s.mu.Unlock()
	return nil
}
