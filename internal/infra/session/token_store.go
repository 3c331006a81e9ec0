// Package session holds the broker-owned mutable session state: the
// upstream token store and the activity tracker. Both are in-memory
// maps behind the port interfaces, so they can be replaced by a
// persistent store without changing call sites. A restart drops all
// upstream-token state while previously issued internal tokens remain
// valid — callers then get an upstream-session-expired error and must
// log in again.
package session

import (
	"sync"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
)

// TokenStore is a thread-safe userID → upstream token record map with
// lazy TTL eviction plus a periodic sweep.
type TokenStore struct {
	mu      sync.RWMutex
	records map[string]domain.UpstreamTokenRecord
}

// NewTokenStore creates the store and starts the background sweep.
func NewTokenStore(sweepEvery time.Duration) *TokenStore {
	s := &TokenStore{records: make(map[string]domain.UpstreamTokenRecord)}
	if sweepEvery > 0 {
		go s.sweep(sweepEvery)
	}
	return s
}

// Get returns the record only while now < expiresAt; an expired record
// is evicted and reported as absent, forcing re-authentication.
func (s *TokenStore) Get(userID string) (*domain.UpstreamTokenRecord, bool) {
	s.mu.RLock()
	rec, ok := s.records[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !time.Now().Before(rec.ExpiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the record in the meantime.
		if cur, ok := s.records[userID]; ok && !time.Now().Before(cur.ExpiresAt) {
			delete(s.records, userID)
		}
		s.mu.Unlock()
		return nil, false
	}
	return &rec, true
}

// Set overwrites any prior record for the user. One active upstream
// session per user.
func (s *TokenStore) Set(rec domain.UpstreamTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.UserID] = rec
	return nil
}

// Clear removes the user's record. Idempotent.
func (s *TokenStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
}

// Len reports the number of live records (expired ones included until
// the next Get or sweep).
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *TokenStore) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, rec := range s.records {
			if now.After(rec.ExpiresAt) {
				delete(s.records, id)
			}
		}
		s.mu.Unlock()
	}
}
