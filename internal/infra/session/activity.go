package session

import (
	"sync"
	"time"
)

// ActivityTracker records the last authenticated request per user.
// Idle-timeout policy lives in the service layer; this type only
// stores timestamps safely under concurrent access.
type ActivityTracker struct {
	mu   sync.RWMutex
	last map[string]time.Time
}

// NewActivityTracker creates an empty tracker.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{last: make(map[string]time.Time)}
}

// LastActivity returns the user's last recorded activity.
func (t *ActivityTracker) LastActivity(userID string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ts, ok := t.last[userID]
	return ts, ok
}

// Touch bumps the user's last activity to now, creating the record if
// it does not exist yet.
func (t *ActivityTracker) Touch(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last[userID] = time.Now()
}

// Remove deletes the user's activity record. Idempotent.
func (t *ActivityTracker) Remove(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.last, userID)
}
