// Package history defines per-user search history entries.
package history

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Entry is one executed search (immutable value object).
type Entry struct {
	id          string
	userID      string
	query       string
	types       []string
	resultCount int
	at          time.Time
}

// New creates an Entry with a fresh id.
func New(userID, query string, types []string, resultCount int, at time.Time) Entry {
	return Entry{
		id:          uuid.NewString(),
		userID:      userID,
		query:       query,
		types:       slices.Clone(types),
		resultCount: resultCount,
		at:          at,
	}
}

// ID returns the entry identifier.
func (e Entry) ID() string { return e.id }

// UserID returns the user who ran the search.
func (e Entry) UserID() string { return e.userID }

// Query returns the raw query text.
func (e Entry) Query() string { return e.query }

// Types returns the targeted document types.
func (e Entry) Types() []string { return e.types }

// ResultCount returns the number of matches.
func (e Entry) ResultCount() int { return e.resultCount }

// At returns when the search ran.
func (e Entry) At() time.Time { return e.at }
