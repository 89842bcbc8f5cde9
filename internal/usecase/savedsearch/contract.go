package savedsearch

import (
	"context"

	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/domain/search/result"
)

// Store persists saved searches. Save must clear the owner's other
// defaults atomically when the saved search is a default.
type Store interface {
	Save(ctx context.Context, s domsaved.SavedSearch) error
	Get(ctx context.Context, id string) (domsaved.SavedSearch, error)
	ListByOwner(ctx context.Context, owner string) ([]domsaved.SavedSearch, error)
	Delete(ctx context.Context, id string) error
}

// Searcher runs queries and exposes the limits used to validate them.
type Searcher interface {
	Search(ctx context.Context, spec query.Spec, userID string) (result.Page, error)
	Limits() query.Limits
}
