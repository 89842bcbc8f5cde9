// Package history is the in-memory, per-user capped search history.
package history

import (
	"sync"

	domhistory "github.com/kailas-cloud/recordex/internal/domain/history"
)

// DefaultCapacity is the number of entries kept per user.
const DefaultCapacity = 100

type userLog struct {
	mu      sync.Mutex
	entries []domhistory.Entry // oldest first
}

// Store keeps one log per user. Appends and evictions lock only that user's log.
type Store struct {
	mu       sync.RWMutex
	logs     map[string]*userLog
	capacity int
}

// New creates a store; capacity <= 0 uses DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{logs: make(map[string]*userLog), capacity: capacity}
}

// Append records an entry, evicting the oldest beyond capacity.
func (s *Store) Append(e domhistory.Entry) {
	l := s.logFor(e.UserID(), true)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - s.capacity; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// List returns up to limit entries, newest first.
func (s *Store) List(userID string, limit int) []domhistory.Entry {
	l := s.logFor(userID, false)
	if l == nil {
		return []domhistory.Entry{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domhistory.Entry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Queries returns every recorded query text across users, oldest first per user.
func (s *Store) Queries() []string {
	s.mu.RLock()
	logs := make([]*userLog, 0, len(s.logs))
	for _, l := range s.logs {
		logs = append(logs, l)
	}
	s.mu.RUnlock()

	var out []string
	for _, l := range logs {
		l.mu.Lock()
		for _, e := range l.entries {
			out = append(out, e.Query())
		}
		l.mu.Unlock()
	}
	return out
}

// Clear drops a user's history and returns how many entries were removed.
func (s *Store) Clear(userID string) int {
	s.mu.Lock()
	l, ok := s.logs[userID]
	delete(s.logs, userID)
	s.mu.Unlock()
	if !ok {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	l.entries = nil
	return n
}

func (s *Store) logFor(userID string, create bool) *userLog {
	s.mu.RLock()
	l, ok := s.logs[userID]
	s.mu.RUnlock()
	if ok || !create {
		return l
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.logs[userID]; ok {
		return l
	}
	l = &userLog{}
	s.logs[userID] = l
	return l
}
