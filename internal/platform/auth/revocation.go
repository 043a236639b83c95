package auth

import (
	"sync"
	"time"
)

type revocationEntry struct {
	expiresAt time.Time
}

// TokenRevocationStore tracks revoked token IDs so sign-out takes effect
// before the token's natural expiry. Entries are dropped once expired.
type TokenRevocationStore struct {
	mu          sync.RWMutex
	entries     map[string]revocationEntry
	accountJTIs map[string]map[string]struct{}
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewTokenRevocationStore() *TokenRevocationStore {
	s := &TokenRevocationStore{
		entries:     make(map[string]revocationEntry),
		accountJTIs: make(map[string]map[string]struct{}),
		stop:        make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Remember associates a live token with an account so that
// RevokeAllForAccount can find it later.
func (s *TokenRevocationStore) Remember(accountID, jti string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountJTIs[accountID] == nil {
		s.accountJTIs[accountID] = make(map[string]struct{})
	}
	s.accountJTIs[accountID][jti] = struct{}{}
}

// Revoke marks a token ID invalid until expiresAt.
func (s *TokenRevocationStore) Revoke(jti string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = revocationEntry{expiresAt: expiresAt}
}

func (s *TokenRevocationStore) IsRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[jti]
	if !ok {
		return false
	}
	return time.Now().Before(entry.expiresAt)
}

// RevokeAllForAccount invalidates every remembered token for an account,
// used when a password changes.
func (s *TokenRevocationStore) RevokeAllForAccount(accountID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti := range s.accountJTIs[accountID] {
		s.entries[jti] = revocationEntry{expiresAt: expiresAt}
	}
	delete(s.accountJTIs, accountID)
}

func (s *TokenRevocationStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

func (s *TokenRevocationStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, jti)
		}
	}
}

func (s *TokenRevocationStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
