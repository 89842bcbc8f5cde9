package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/domain"
	domanalytics "github.com/kailas-cloud/recordex/internal/domain/analytics"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	domhistory "github.com/kailas-cloud/recordex/internal/domain/history"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/domain/search/result"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
)

// Defaults for the tunables exposed through With* options.
const (
	DefaultMinFuzzyTermLength = 4
	DefaultSuggestionLimit    = 5
	suggestBelowTotal         = 3
)

// Service executes lexical searches over the document store.
type Service struct {
	docs            DocumentScanner
	schemas         SchemaReader
	analyzer        Analyzer
	history         HistoryStore
	analytics       AnalyticsRecorder
	events          event.Emitter
	logger          *zap.Logger
	now             func() time.Time
	limits          query.Limits
	minFuzzyLen     int
	suggestionLimit int
}

// New creates a search service.
func New(docs DocumentScanner, schemas SchemaReader, analyzer Analyzer) *Service {
	return &Service{
		docs:            docs,
		schemas:         schemas,
		analyzer:        analyzer,
		events:          event.Discard{},
		logger:          zap.NewNop(),
		now:             time.Now,
		limits:          query.DefaultLimits(),
		minFuzzyLen:     DefaultMinFuzzyTermLength,
		suggestionLimit: DefaultSuggestionLimit,
	}
}

// WithHistory enables per-user history recording and history suggestions.
func (s *Service) WithHistory(h HistoryStore) *Service {
	s.history = h
	return s
}

// WithAnalytics enables analytics recording.
func (s *Service) WithAnalytics(a AnalyticsRecorder) *Service {
	s.analytics = a
	return s
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

// WithLimits configures pagination and fuzzy limits.
func (s *Service) WithLimits(l query.Limits) *Service {
	s.limits = l
	return s
}

// WithMinFuzzyTermLength sets the minimum term length for fuzzy matching.
func (s *Service) WithMinFuzzyTermLength(n int) *Service {
	if n > 0 {
		s.minFuzzyLen = n
	}
	return s
}

// WithSuggestionLimit caps "did you mean" suggestions.
func (s *Service) WithSuggestionLimit(n int) *Service {
	if n >= 0 {
		s.suggestionLimit = n
	}
	return s
}

// Limits returns the configured query limits.
func (s *Service) Limits() query.Limits { return s.limits }

// Search validates spec and executes it. userID may be empty.
func (s *Service) Search(ctx context.Context, spec query.Spec, userID string) (result.Page, error) {
	q, err := query.New(spec, s.limits)
	if err != nil {
		return result.Page{}, fmt.Errorf("parse query: %w", err)
	}
	return s.Execute(ctx, q, userID)
}

// Execute runs a validated query.
func (s *Service) Execute(ctx context.Context, q query.Query, userID string) (result.Page, error) {
	start := s.now()

	schemas, err := s.targets(q.Types())
	if err != nil {
		return result.Page{}, err
	}
	loc, err := s.analyzer.ResolveLocale(q.Locale(), q.Text())
	if err != nil {
		if errors.Is(err, analysis.ErrUnsupportedLocale) {
			return result.Page{}, domain.NewQueryError("locale", fmt.Sprintf("unsupported locale %q", q.Locale()))
		}
		return result.Page{}, fmt.Errorf("resolve locale: %w", err)
	}
	if err := validateSort(q.Sort(), schemas); err != nil {
		return result.Page{}, err
	}

	bySchema := make(map[string]domschema.Schema, len(schemas))
	preds := make(map[string][]predicate, len(schemas))
	types := make([]string, 0, len(schemas))
	for _, sch := range schemas {
		p, err := compileFilters(sch, q.Filters())
		if err != nil {
			return result.Page{}, err
		}
		bySchema[sch.Type()] = sch
		preds[sch.Type()] = p
		types = append(types, sch.Type())
	}

	terms := s.analyzer.Terms(q.Text(), loc)
	browse := len(terms) == 0
	sc := scorer{
		terms:       terms,
		operator:    q.Operator(),
		fuzzy:       q.Fuzzy(),
		distance:    q.FuzzyDistance(),
		minFuzzyLen: s.minFuzzyLen,
		allow:       q.Fields(),
	}

	var matches []scored
	for _, doc := range s.docs.Scan(q.Tenant(), types) {
		sch := bySchema[doc.Type()]
		score, ok := sc.score(doc, sch)
		if !ok {
			continue
		}
		if !passes(doc, preds[doc.Type()]) {
			continue
		}
		if !browse && (score <= 0 || score < q.MinScore()) {
			continue
		}
		matches = append(matches, scored{doc: doc, score: score})
	}

	order(matches, q.Sort())
	pageDocs, totalPages := paginate(matches, q.Page(), q.PageSize())

	var hl *highlighter
	if q.Highlight() && !browse {
		hl = newHighlighter(terms)
	}
	hits := make([]result.Hit, 0, len(pageDocs))
	for _, m := range pageDocs {
		hits = append(hits, result.NewHit(
			m.doc.ID(), m.doc.Type(), m.doc.Tenant(), m.score,
			m.doc.Fields(), hl.fields(m.doc, bySchema[m.doc.Type()]), m.doc.IndexedAt(),
		))
	}

	page := result.Page{
		Hits:       hits,
		Total:      len(matches),
		Page:       q.Page(),
		PageSize:   q.PageSize(),
		TotalPages: totalPages,
		Facets:     facets(q.Facets(), schemas, matches),
		Locale:     loc,
	}
	if page.Total < suggestBelowTotal {
		page.Suggestions = s.didYouMean(q.Text())
	}
	page.Took = s.now().Sub(start)

	s.record(ctx, q, types, userID, page)
	return page, nil
}

// targets resolves the queried types; none means every registered type.
func (s *Service) targets(types []string) ([]domschema.Schema, error) {
	if len(types) == 0 {
		types = s.schemas.Types()
	}
	out := make([]domschema.Schema, 0, len(types))
	for _, t := range types {
		sch, err := s.schemas.Get(t)
		if err != nil {
			return nil, fmt.Errorf("search type %q: %w", t, domain.ErrInvalidType)
		}
		out = append(out, sch)
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, q query.Query, types []string, userID string, page result.Page) {
	if userID != "" && s.history != nil {
		s.history.Append(domhistory.New(userID, q.Text(), types, page.Total, s.now()))
	}
	if s.analytics != nil {
		s.analytics.Record(domanalytics.Sample{
			UserID:  userID,
			Query:   q.Text(),
			Types:   types,
			Results: page.Total,
			Latency: page.Took,
		})
	}
	s.events.Emit(ctx, event.New(event.SearchExecuted, s.now(), map[string]any{
		event.AttrTypes:   types,
		event.AttrResults: page.Total,
		event.AttrTookMS:  page.Took.Milliseconds(),
		event.AttrUser:    userID,
		event.AttrQuery:   q.Text(),
	}))
	s.logger.Debug("search executed",
		zap.String("query", q.Text()),
		zap.Strings("types", types),
		zap.Int("results", page.Total),
		zap.Duration("took", page.Took),
	)
}
