// Package engine wires the in-memory index, the use cases and the event bus
// into one runnable unit. The HTTP server, the CLI and the library facade
// all build on it.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/catalog"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/events"
	docrepo "github.com/kailas-cloud/recordex/internal/repository/document"
	historyrepo "github.com/kailas-cloud/recordex/internal/repository/history"
	savedrepo "github.com/kailas-cloud/recordex/internal/repository/savedsearch"
	schemarepo "github.com/kailas-cloud/recordex/internal/repository/schema"
	analyticsuc "github.com/kailas-cloud/recordex/internal/usecase/analytics"
	healthuc "github.com/kailas-cloud/recordex/internal/usecase/health"
	historyuc "github.com/kailas-cloud/recordex/internal/usecase/history"
	indexinguc "github.com/kailas-cloud/recordex/internal/usecase/indexing"
	saveduc "github.com/kailas-cloud/recordex/internal/usecase/savedsearch"
	schemauc "github.com/kailas-cloud/recordex/internal/usecase/schema"
	searchuc "github.com/kailas-cloud/recordex/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/recordex/internal/usecase/suggest"
)

// DefaultHistoryCap is the per-user history capacity.
const DefaultHistoryCap = 100

// Options configures an Engine. Zero fields use defaults.
type Options struct {
	Logger  *zap.Logger
	Lexicon *analysis.Lexicon
	// Schemas replaces the embedded business catalog when non-nil.
	Schemas            []domschema.Schema
	HistoryCap         int
	Limits             query.Limits
	MinFuzzyTermLength int
	SuggestionLimit    int
	Analytics          analyticsuc.Config
	MaxBatchSize       int
	ReindexWorkers     int
	// SavedSearches defaults to an in-memory store.
	SavedSearches saveduc.Store
	Subscribers   []event.Handler
	Clock         func() time.Time
	// StoragePinger and EventsPinger feed the health report when set.
	StoragePinger healthuc.Pinger
	EventsPinger  healthuc.Pinger
}

// Engine holds the wired components.
type Engine struct {
	Logger    *zap.Logger
	Analyzer  *analysis.Analyzer
	Registry  *schemarepo.Registry
	Documents *docrepo.Store
	History   *historyrepo.Store
	Bus       *events.Bus

	Indexing    *indexinguc.Service
	Search      *searchuc.Service
	Suggest     *suggestuc.Service
	Saved       *saveduc.Service
	HistoryLog  *historyuc.Service
	Analytics   *analyticsuc.Aggregator
	SchemaAdmin *schemauc.Service
	Health      *healthuc.Service
}

// New builds an Engine.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	lex := analysis.DefaultLexicon()
	if opts.Lexicon != nil {
		if err := opts.Lexicon.Validate(); err != nil {
			return nil, fmt.Errorf("lexicon: %w", err)
		}
		lex = *opts.Lexicon
	}
	analyzer := analysis.New(lex)

	schemas := opts.Schemas
	if schemas == nil {
		var err error
		if schemas, err = catalog.Default(); err != nil {
			return nil, fmt.Errorf("load default catalog: %w", err)
		}
	}
	for _, s := range schemas {
		if !analyzer.Supports(s.Locale()) {
			return nil, fmt.Errorf("schema %s: unsupported locale %q", s.Type(), s.Locale())
		}
	}

	historyCap := opts.HistoryCap
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	saved := opts.SavedSearches
	if saved == nil {
		saved = savedrepo.NewMemory()
	}

	bus := events.NewBus(logger)
	for _, h := range opts.Subscribers {
		bus.Subscribe(h)
	}

	e := &Engine{
		Logger:    logger,
		Analyzer:  analyzer,
		Registry:  schemarepo.New(schemas...),
		Documents: docrepo.New(),
		History:   historyrepo.New(historyCap),
		Bus:       bus,
		Analytics: analyticsuc.New(opts.Analytics),
	}

	e.Indexing = indexinguc.New(e.Documents, e.Registry, analyzer).
		WithEvents(bus).
		WithLogger(logger.Named("indexing")).
		WithClock(now).
		WithWorkers(opts.ReindexWorkers).
		WithMaxBatchSize(opts.MaxBatchSize)
	e.Search = searchuc.New(e.Documents, e.Registry, analyzer).
		WithHistory(e.History).
		WithAnalytics(e.Analytics).
		WithEvents(bus).
		WithLogger(logger.Named("search")).
		WithClock(now).
		WithLimits(opts.Limits).
		WithMinFuzzyTermLength(opts.MinFuzzyTermLength)
	if opts.SuggestionLimit > 0 {
		e.Search.WithSuggestionLimit(opts.SuggestionLimit)
	}
	e.Suggest = suggestuc.New(e.Documents, e.Registry, e.Analytics).
		WithLogger(logger.Named("suggest"))
	e.Saved = saveduc.New(saved, e.Search).
		WithEvents(bus).
		WithLogger(logger.Named("saved")).
		WithClock(now)
	e.HistoryLog = historyuc.New(e.History).
		WithEvents(bus).
		WithLogger(logger.Named("history")).
		WithClock(now)
	e.SchemaAdmin = schemauc.New(e.Registry, e.Indexing, analyzer).
		WithEvents(bus).
		WithLogger(logger.Named("schema"))
	e.Health = healthuc.New(opts.StoragePinger, opts.EventsPinger)

	return e, nil
}
