// Package recordex is an embeddable multi-tenant search engine for business
// records. An Engine holds every document, saved search, history log and
// analytics aggregate in memory; nothing is shared between engines.
package recordex

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/engine"
	savedrepo "github.com/kailas-cloud/recordex/internal/repository/savedsearch"
	healthuc "github.com/kailas-cloud/recordex/internal/usecase/health"
)

// Errors returned by Engine methods. Test with errors.Is.
var (
	ErrNotFound     = domain.ErrNotFound
	ErrInvalidType  = domain.ErrInvalidType
	ErrInvalidQuery = domain.ErrInvalidQuery
	ErrValidation   = domain.ErrValidation
	ErrConflict     = domain.ErrConflict
)

// Engine is the recordex library entry point.
type Engine struct {
	eng    *engine.Engine
	closer func() error
}

// New creates an Engine. With no options it registers the default business
// catalog and the embedded Romanian/English lexicon.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{}
	for _, o := range opts {
		o(cfg)
	}

	eo := engine.Options{
		Logger:             cfg.logger,
		HistoryCap:         cfg.historyCap,
		Limits:             cfg.limits,
		MinFuzzyTermLength: cfg.minFuzzyLen,
		SuggestionLimit:    cfg.suggestionLimit,
		MaxBatchSize:       cfg.maxBatchSize,
		ReindexWorkers:     cfg.workers,
		Subscribers:        cfg.handlers,
		Clock:              cfg.clock,
	}
	if cfg.lexicon != nil {
		lex := *cfg.lexicon
		eo.Lexicon = &lex
	}
	if err := engine.LoadResources(&eo, cfg.lexiconPath, cfg.schemaPath, cfg.defaultLocale); err != nil {
		return nil, fmt.Errorf("recordex: %w", err)
	}
	if len(cfg.schemas) > 0 {
		schemas, err := toDomainSchemas(cfg.schemas)
		if err != nil {
			return nil, fmt.Errorf("recordex: %w", err)
		}
		eo.Schemas = schemas
	}

	var closer func() error
	if cfg.badgerPath != "" || cfg.badgerInMemory {
		store, err := savedrepo.OpenBadger(cfg.badgerPath, cfg.badgerInMemory, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("recordex: open saved search store: %w", err)
		}
		eo.SavedSearches = store
		eo.StoragePinger = store
		closer = store.Close
	}

	eng, err := engine.New(eo)
	if err != nil {
		if closer != nil {
			err = errors.Join(err, closer())
		}
		return nil, fmt.Errorf("recordex: %w", err)
	}
	return &Engine{eng: eng, closer: closer}, nil
}

// Close releases the durable saved search store, if any.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	if err := e.closer(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Health reports whether the engine's stores are reachable.
func (e *Engine) Health(ctx context.Context) Health {
	r := e.eng.Health.Check(ctx)
	h := Health{Healthy: r.Status == healthuc.Healthy, Checks: make(map[string]string, len(r.Checks))}
	for name, c := range r.Checks {
		h.Checks[name] = string(c)
	}
	return h
}

// Health is the outcome of a health probe. Checks maps component names to
// "ok" or "error".
type Health struct {
	Healthy bool
	Checks  map[string]string
}
