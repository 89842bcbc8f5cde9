package recordex

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
)

// Lexicon is the versioned stop word, detection marker and synonym data.
type Lexicon = analysis.Lexicon

// LocaleRules holds one locale's stop words and detection markers.
type LocaleRules = analysis.LocaleRules

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	logger          *zap.Logger
	lexicon         *Lexicon
	lexiconPath     string
	schemaPath      string
	defaultLocale   string
	schemas         []Schema
	historyCap      int
	limits          query.Limits
	minFuzzyLen     int
	suggestionLimit int
	maxBatchSize    int
	workers         int
	handlers        []event.Handler
	clock           func() time.Time
	badgerPath      string
	badgerInMemory  bool
}

// WithLogger sets the zap logger. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// WithLexicon replaces the embedded lexicon.
func WithLexicon(lex Lexicon) Option {
	return func(c *engineConfig) { c.lexicon = &lex }
}

// WithLexiconFile loads the lexicon from a YAML file.
func WithLexiconFile(path string) Option {
	return func(c *engineConfig) { c.lexiconPath = path }
}

// WithDefaultLocale overrides the lexicon's fallback locale.
func WithDefaultLocale(locale string) Option {
	return func(c *engineConfig) { c.defaultLocale = locale }
}

// WithSchemaFile replaces the default business catalog with a YAML catalog file.
func WithSchemaFile(path string) Option {
	return func(c *engineConfig) { c.schemaPath = path }
}

// WithSchemas replaces the default business catalog. Takes precedence over
// WithSchemaFile.
func WithSchemas(schemas ...Schema) Option {
	return func(c *engineConfig) { c.schemas = append(c.schemas, schemas...) }
}

// WithHistoryCap sets how many history entries are kept per user.
func WithHistoryCap(n int) Option {
	return func(c *engineConfig) { c.historyCap = n }
}

// WithPageSizes sets the default and maximum page size.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(c *engineConfig) {
		c.limits.DefaultPageSize = defaultSize
		c.limits.MaxPageSize = maxSize
	}
}

// WithFuzzyDistance sets the default and maximum fuzzy edit distance.
func WithFuzzyDistance(defaultDist, maxDist int) Option {
	return func(c *engineConfig) {
		c.limits.DefaultFuzzyDistance = defaultDist
		c.limits.MaxFuzzyDistance = maxDist
	}
}

// WithMinFuzzyTermLength sets the shortest term eligible for fuzzy matching.
func WithMinFuzzyTermLength(n int) Option {
	return func(c *engineConfig) { c.minFuzzyLen = n }
}

// WithSuggestionLimit caps "did you mean" suggestions on sparse results.
func WithSuggestionLimit(n int) Option {
	return func(c *engineConfig) { c.suggestionLimit = n }
}

// WithMaxBatchSize caps the number of documents per BulkIndex call.
func WithMaxBatchSize(n int) Option {
	return func(c *engineConfig) { c.maxBatchSize = n }
}

// WithReindexWorkers sets the worker pool size used by ReindexAll.
func WithReindexWorkers(n int) Option {
	return func(c *engineConfig) { c.workers = n }
}

// WithEventHandler subscribes h to every engine event. Handlers run
// synchronously on the calling goroutine and must not block.
func WithEventHandler(h func(ctx context.Context, e Event)) Option {
	return func(c *engineConfig) {
		if h != nil {
			c.handlers = append(c.handlers, event.Handler(h))
		}
	}
}

// WithClock sets the time source for document and saved search timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) { c.clock = now }
}

// WithBadgerSavedSearches persists saved searches in a badger database at dir.
// Call Engine.Close to release it.
func WithBadgerSavedSearches(dir string) Option {
	return func(c *engineConfig) { c.badgerPath = dir }
}

// WithInMemoryBadger uses an in-memory badger database for saved searches.
func WithInMemoryBadger() Option {
	return func(c *engineConfig) { c.badgerInMemory = true }
}
