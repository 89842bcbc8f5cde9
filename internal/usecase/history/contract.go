package history

import domhistory "github.com/kailas-cloud/recordex/internal/domain/history"

// Store is the per-user history log.
type Store interface {
	List(userID string, limit int) []domhistory.Entry
	Clear(userID string) int
}
