// Package savedsearch stores saved searches in memory or in badger.
package savedsearch

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kailas-cloud/recordex/internal/domain"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
)

// Memory is a map-backed store.
type Memory struct {
	mu    sync.RWMutex
	items map[string]domsaved.SavedSearch
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]domsaved.SavedSearch)}
}

// Save upserts s. When s is the default, the owner's other defaults are
// cleared in the same critical section.
func (m *Memory) Save(_ context.Context, s domsaved.SavedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.IsDefault() {
		for id, other := range m.items {
			if id != s.ID() && other.Owner() == s.Owner() && other.IsDefault() {
				m.items[id] = other.WithDefault(false)
			}
		}
	}
	m.items[s.ID()] = s
	return nil
}

// Get returns a saved search by id.
func (m *Memory) Get(_ context.Context, id string) (domsaved.SavedSearch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.items[id]
	if !ok {
		return domsaved.SavedSearch{}, fmt.Errorf("saved search %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// ListByOwner returns the owner's saved searches, oldest first.
func (m *Memory) ListByOwner(_ context.Context, owner string) ([]domsaved.SavedSearch, error) {
	m.mu.RLock()
	out := make([]domsaved.SavedSearch, 0)
	for _, s := range m.items {
		if s.Owner() == owner {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()
	sortByCreated(out)
	return out, nil
}

// Delete removes a saved search by id.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("saved search %s: %w", id, domain.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func sortByCreated(list []domsaved.SavedSearch) {
	slices.SortFunc(list, func(a, b domsaved.SavedSearch) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}
