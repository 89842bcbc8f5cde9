// Package savedsearch implements owner-scoped saved search CRUD and execution.
package savedsearch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/domain/search/result"
)

// CreateInput holds the fields of a new saved search.
type CreateInput struct {
	Name      i18n.Labels
	Query     query.Spec
	IsDefault bool
}

// Service manages saved searches.
type Service struct {
	store    Store
	searcher Searcher
	events   event.Emitter
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a saved search service.
func New(store Store, searcher Searcher) *Service {
	return &Service{
		store:    store,
		searcher: searcher,
		events:   event.Discard{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// WithEvents sets the event emitter.
func (s *Service) WithEvents(e event.Emitter) *Service {
	if e != nil {
		s.events = e
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create validates and stores a new saved search.
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (domsaved.SavedSearch, error) {
	if err := s.validateQuery(in.Query); err != nil {
		return domsaved.SavedSearch{}, err
	}
	saved, err := domsaved.New(owner, in.Name, in.Query, in.IsDefault, s.now())
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	if err := s.store.Save(ctx, saved); err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("save search: %w", err)
	}
	s.events.Emit(ctx, event.New(event.SearchSaved, s.now(), map[string]any{
		event.AttrID:   saved.ID(),
		event.AttrUser: owner,
	}))
	return saved, nil
}

// Get returns a saved search owned by owner. Searches of other owners
// are reported as not found.
func (s *Service) Get(ctx context.Context, owner, id string) (domsaved.SavedSearch, error) {
	saved, err := s.store.Get(ctx, id)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search: %w", err)
	}
	if saved.Owner() != owner {
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search %s: %w", id, domain.ErrNotFound)
	}
	return saved, nil
}

// List returns the owner's saved searches, oldest first.
func (s *Service) List(ctx context.Context, owner string) ([]domsaved.SavedSearch, error) {
	if owner == "" {
		return nil, domain.NewValidationError("userId", "user id is required")
	}
	list, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	return list, nil
}

// Update applies changes to a saved search owned by owner.
func (s *Service) Update(ctx context.Context, owner, id string, c domsaved.Changes) (domsaved.SavedSearch, error) {
	saved, err := s.Get(ctx, owner, id)
	if err != nil {
		return domsaved.SavedSearch{}, err
	}
	if c.Query != nil {
		if err := s.validateQuery(*c.Query); err != nil {
			return domsaved.SavedSearch{}, err
		}
	}
	updated, err := saved.Apply(c, s.now())
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	if err := s.store.Save(ctx, updated); err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("update saved search: %w", err)
	}
	return updated, nil
}

// SetDefault marks the saved search as the owner's default.
func (s *Service) SetDefault(ctx context.Context, owner, id string) (domsaved.SavedSearch, error) {
	yes := true
	return s.Update(ctx, owner, id, domsaved.Changes{IsDefault: &yes})
}

// Delete removes a saved search owned by owner.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	s.events.Emit(ctx, event.New(event.SavedDeleted, s.now(), map[string]any{
		event.AttrID:   id,
		event.AttrUser: owner,
	}))
	return nil
}

// Execute runs a saved search with overrides merged onto the stored query.
func (s *Service) Execute(ctx context.Context, owner, id string, o query.Overrides) (result.Page, error) {
	saved, err := s.Get(ctx, owner, id)
	if err != nil {
		return result.Page{}, err
	}
	page, err := s.searcher.Search(ctx, saved.Query().Merge(o), owner)
	if err != nil {
		return result.Page{}, fmt.Errorf("execute saved search %s: %w", id, err)
	}
	return page, nil
}

func (s *Service) validateQuery(spec query.Spec) error {
	if _, err := query.New(spec, s.searcher.Limits()); err != nil {
		return fmt.Errorf("validate query: %w", err)
	}
	return nil
}
