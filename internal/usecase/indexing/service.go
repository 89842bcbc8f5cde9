package indexing

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/domain"
	dombatch "github.com/kailas-cloud/recordex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/document/patch"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

// MaxBatchSize is the maximum number of items per bulk index request.
const MaxBatchSize = 1000

// Input is a document to index.
type Input struct {
	Type   string
	Tenant string
	Fields map[string]any
	Locale string // empty uses the schema locale, "auto" detects
}

// Service validates documents against their schema, derives index state and
// keeps the store current.
type Service struct {
	store        Store
	schemas      SchemaReader
	locales      LocaleResolver
	events       event.Emitter
	logger       *zap.Logger
	now          func() time.Time
	workers      int
	maxBatchSize int
}

// New creates an indexing service.
func New(store Store, schemas SchemaReader, locales LocaleResolver) *Service {
	return &Service{
		store:        store,
		schemas:      schemas,
		locales:      locales,
		events:       event.Discard{},
		logger:       zap.NewNop(),
		now:          time.Now,
		workers:      max(runtime.NumCPU()/2, 1),
		maxBatchSize: MaxBatchSize,
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

// WithWorkers sets the reindexAll pool size.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithMaxBatchSize configures the maximum bulk size.
func (s *Service) WithMaxBatchSize(n int) *Service {
	if n > 0 {
		s.maxBatchSize = n
	}
	return s
}

// Index validates and stores a new document with a fresh id.
func (s *Service) Index(ctx context.Context, in Input) (domdoc.Document, error) {
	doc, err := s.build(in)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("index document: %w", err)
	}
	if err := s.store.Put(doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("store document: %w", err)
	}
	s.emit(ctx, event.DocumentIndexed, map[string]any{
		event.AttrID: doc.ID(), event.AttrType: doc.Type(), event.AttrTenant: doc.Tenant(),
	})
	return doc, nil
}

// BulkIndex indexes items independently and reports a result per item.
func (s *Service) BulkIndex(ctx context.Context, items []Input) []dombatch.Result {
	results := make([]dombatch.Result, len(items))
	if len(items) > s.maxBatchSize {
		err := domain.NewValidationError("", fmt.Sprintf("batch size exceeds %d", s.maxBatchSize))
		for i := range items {
			results[i] = dombatch.NewError(i, err)
		}
		return results
	}
	for i, in := range items {
		doc, err := s.Index(ctx, in)
		if err != nil {
			results[i] = dombatch.NewError(i, err)
			continue
		}
		results[i] = dombatch.NewOK(i, doc.ID())
	}
	return results
}

func (s *Service) build(in Input) (domdoc.Document, error) {
	sch, err := s.schemas.Get(in.Type)
	if err != nil {
		return domdoc.Document{}, invalidType(in.Type)
	}
	if in.Tenant == "" {
		return domdoc.Document{}, domain.NewValidationError("tenantId", "is required")
	}

	values, derived, err := Derive(sch, in.Fields)
	if err != nil {
		return domdoc.Document{}, err
	}

	loc, err := s.locale(sch, in.Locale, values)
	if err != nil {
		return domdoc.Document{}, err
	}

	now := s.now()
	return domdoc.New(domdoc.Params{
		ID:        uuid.NewString(),
		Type:      sch.Type(),
		Tenant:    in.Tenant,
		Raw:       in.Fields,
		Values:    values,
		Locale:    loc,
		Derived:   derived,
		CreatedAt: now,
		UpdatedAt: now,
		IndexedAt: now,
	}), nil
}

func (s *Service) locale(sch domschema.Schema, requested string, values map[string]value.Value) (i18n.Locale, error) {
	loc := i18n.ParseLocale(requested)
	if requested == "" {
		loc = sch.Locale()
	}
	resolved, err := s.locales.ResolveLocale(loc, searchableText(sch, values))
	if err != nil {
		if errors.Is(err, analysis.ErrUnsupportedLocale) {
			return "", domain.NewValidationError("locale", fmt.Sprintf("unsupported locale %q", requested))
		}
		return "", err
	}
	return resolved, nil
}

// Update merges p onto the stored fields, revalidates the merged set and
// rebuilds the derived state before swapping the document in.
func (s *Service) Update(ctx context.Context, id string, p patch.Patch) (domdoc.Document, error) {
	doc, err := s.store.Update(id, func(cur domdoc.Document) (domdoc.Document, error) {
		sch, err := s.schemas.Get(cur.Type())
		if err != nil {
			return domdoc.Document{}, invalidType(cur.Type())
		}
		merged := p.Apply(cur.Fields())
		values, derived, err := Derive(sch, merged)
		if err != nil {
			return domdoc.Document{}, err
		}
		return cur.WithContent(merged, values, derived, s.now()), nil
	})
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("update document: %w", err)
	}
	s.emit(ctx, event.DocumentUpdated, map[string]any{
		event.AttrID: doc.ID(), event.AttrType: doc.Type(), event.AttrTenant: doc.Tenant(),
	})
	return doc, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.store.Get(id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.emit(ctx, event.DocumentDeleted, map[string]any{
		event.AttrID: id, event.AttrType: doc.Type(), event.AttrTenant: doc.Tenant(),
	})
	return nil
}

// Get returns a document by id.
func (s *Service) Get(_ context.Context, id string) (domdoc.Document, error) {
	doc, err := s.store.Get(id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Reindex rebuilds the derived state of every document of docType against
// the current schema. Documents that no longer validate keep their previous
// state and are counted as failed.
func (s *Service) Reindex(ctx context.Context, docType string) (dombatch.Reindex, error) {
	sch, err := s.schemas.Get(docType)
	if err != nil {
		return dombatch.Reindex{}, fmt.Errorf("reindex: %w", invalidType(docType))
	}

	log := s.logger.With(zap.String("type", docType))
	ok, failed := s.store.Rewrite(docType, func(cur domdoc.Document) (domdoc.Document, error) {
		values, derived, err := Derive(sch, cur.Fields())
		if err != nil {
			log.Warn("reindex skipped document", zap.String("id", cur.ID()), zap.Error(err))
			return domdoc.Document{}, err
		}
		return cur.WithDerived(values, derived, s.now()), nil
	})

	res := dombatch.Reindex{Type: docType, Reindexed: ok, Failed: failed}
	s.emit(ctx, event.ReindexCompleted, map[string]any{
		event.AttrType: docType, event.AttrCount: ok, event.AttrFailed: failed,
	})
	return res, nil
}

// ReindexAll reindexes every registered type on a bounded worker pool.
func (s *Service) ReindexAll(ctx context.Context) (dombatch.Summary, error) {
	types := s.schemas.Types()
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return dombatch.Summary{}, fmt.Errorf("create reindex pool: %w", err)
	}
	defer pool.Release()

	parts := make([]dombatch.Reindex, len(types))
	errs := make([]error, len(types))
	var wg sync.WaitGroup
	for i, t := range types {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			parts[i], errs[i] = s.Reindex(ctx, t)
		}); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit reindex %s: %w", t, err)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return dombatch.Summary{}, fmt.Errorf("reindex all: %w", err)
	}
	return dombatch.Summarize(parts), nil
}

// Clear removes every document of docType for tenant (all tenants when empty).
func (s *Service) Clear(ctx context.Context, docType, tenant string) (int, error) {
	if _, err := s.schemas.Get(docType); err != nil {
		return 0, fmt.Errorf("clear index: %w", invalidType(docType))
	}
	n := s.store.Clear(docType, tenant)
	s.emit(ctx, event.IndexCleared, map[string]any{
		event.AttrType: docType, event.AttrTenant: tenant, event.AttrCount: n,
	})
	return n, nil
}

// Stats returns document counts per type.
func (s *Service) Stats(_ context.Context) domdoc.Stats {
	return s.store.Stats()
}

func (s *Service) emit(ctx context.Context, name event.Name, attrs map[string]any) {
	s.events.Emit(ctx, event.New(name, s.now(), attrs))
}
