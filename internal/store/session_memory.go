package store

import (
	"sync"

	"studyhub/internal/util"
)

// MemorySessionStore keeps sessions in-process. Used in tests and when
// running without Redis.
type MemorySessionStore struct {
	mu   sync.RWMutex
	sess map[string]int64
}

// NewMemorySessionStore initializes an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]int64)}
}

// NewSession creates a session token for a user.
func (s *MemorySessionStore) NewSession(userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := util.NewID()
	s.sess[token] = userID
	return token, nil
}

// GetUserIDByToken resolves a token to a user id.
func (s *MemorySessionStore) GetUserIDByToken(token string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sess[token]
	return userID, ok, nil
}

// DeleteSession removes a token mapping.
func (s *MemorySessionStore) DeleteSession(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sess, token)
	return nil
}
