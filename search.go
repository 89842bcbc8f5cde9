package recordex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recordex/internal/domain"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
	saveduc "github.com/kailas-cloud/recordex/internal/usecase/savedsearch"
	suggestuc "github.com/kailas-cloud/recordex/internal/usecase/suggest"
)

// Search runs q. userID may be empty; when set the search is appended to
// that user's history.
func (e *Engine) Search(ctx context.Context, q SearchQuery, userID string) (SearchResult, error) {
	page, err := e.eng.Search.Search(ctx, q, userID)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return fromPage(page), nil
}

// Suggest returns autocomplete candidates for a prefix. It never fails:
// an empty prefix or unknown type yields an empty list.
func (e *Engine) Suggest(ctx context.Context, req SuggestRequest) []Suggestion {
	return e.eng.Suggest.Suggest(ctx, suggestuc.Request{
		Prefix: req.Prefix,
		Type:   req.Type,
		Tenant: req.Tenant,
		Limit:  req.Limit,
		Fuzzy:  req.Fuzzy,
	})
}

// SaveSearch stores a named query for userID.
func (e *Engine) SaveSearch(ctx context.Context, userID string, in SavedSearchInput) (SavedSearch, error) {
	name, err := domsaved.ParseName(in.Name)
	if err != nil {
		return SavedSearch{}, fmt.Errorf("save search: %w", domain.NewValidationError("name", err.Error()))
	}
	s, err := e.eng.Saved.Create(ctx, userID, saveduc.CreateInput{Name: name, Query: in.Query, IsDefault: in.IsDefault})
	if err != nil {
		return SavedSearch{}, fmt.Errorf("save search: %w", err)
	}
	return fromSaved(s), nil
}

// ListSavedSearches returns userID's saved searches, oldest first.
func (e *Engine) ListSavedSearches(ctx context.Context, userID string) ([]SavedSearch, error) {
	list, err := e.eng.Saved.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	return fromSavedList(list), nil
}

// GetSavedSearch returns one of userID's saved searches.
func (e *Engine) GetSavedSearch(ctx context.Context, userID, id string) (SavedSearch, error) {
	s, err := e.eng.Saved.Get(ctx, userID, id)
	if err != nil {
		return SavedSearch{}, fmt.Errorf("get saved search: %w", err)
	}
	return fromSaved(s), nil
}

// UpdateSavedSearch applies the non-nil parts of u.
func (e *Engine) UpdateSavedSearch(ctx context.Context, userID, id string, u SavedSearchUpdate) (SavedSearch, error) {
	changes := domsaved.Changes{Query: u.Query, IsDefault: u.IsDefault}
	if u.Name != nil {
		name, err := domsaved.ParseName(u.Name)
		if err != nil {
			return SavedSearch{}, fmt.Errorf("update saved search: %w", domain.NewValidationError("name", err.Error()))
		}
		changes.Name = name
	}
	s, err := e.eng.Saved.Update(ctx, userID, id, changes)
	if err != nil {
		return SavedSearch{}, fmt.Errorf("update saved search: %w", err)
	}
	return fromSaved(s), nil
}

// SetDefaultSavedSearch marks id as userID's only default search.
func (e *Engine) SetDefaultSavedSearch(ctx context.Context, userID, id string) (SavedSearch, error) {
	s, err := e.eng.Saved.SetDefault(ctx, userID, id)
	if err != nil {
		return SavedSearch{}, fmt.Errorf("set default saved search: %w", err)
	}
	return fromSaved(s), nil
}

// DeleteSavedSearch removes one of userID's saved searches.
func (e *Engine) DeleteSavedSearch(ctx context.Context, userID, id string) error {
	if err := e.eng.Saved.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	return nil
}

// ExecuteSavedSearch runs a saved search. Non-nil override fields replace
// the stored ones for this execution only.
func (e *Engine) ExecuteSavedSearch(ctx context.Context, userID, id string, o *SearchOverrides) (SearchResult, error) {
	var overrides SearchOverrides
	if o != nil {
		overrides = *o
	}
	page, err := e.eng.Saved.Execute(ctx, userID, id, overrides)
	if err != nil {
		return SearchResult{}, fmt.Errorf("execute saved search: %w", err)
	}
	return fromPage(page), nil
}

// History returns up to limit of userID's searches, newest first. A limit
// of zero or less returns the default of 20.
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	entries, err := e.eng.HistoryLog.List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return fromHistory(entries), nil
}

// ClearHistory removes userID's history and returns how many entries were dropped.
func (e *Engine) ClearHistory(ctx context.Context, userID string) (int, error) {
	n, err := e.eng.HistoryLog.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return n, nil
}

// Analytics returns a snapshot of the search aggregates.
func (e *Engine) Analytics() Analytics {
	return e.eng.Analytics.Snapshot()
}
