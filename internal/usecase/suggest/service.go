// Package suggest implements prefix autocomplete over past queries and
// indexed field values.
package suggest

import (
	"cmp"
	"context"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
	"github.com/kailas-cloud/recordex/internal/domain/search/suggestion"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
)

// Limits on the number of returned suggestions.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Field-value match weights.
const (
	scorePrefix     = 2.0
	scoreWordPrefix = 1.5
	scoreFuzzy      = 1.0
)

// minFuzzyPrefix is the shortest prefix that may match fuzzily.
const minFuzzyPrefix = 3

// Request is an autocomplete request. Empty Type means every type and
// empty Tenant every tenant.
type Request struct {
	Prefix string
	Type   string
	Tenant string
	Limit  int
	Fuzzy  bool
}

// Service produces autocomplete suggestions.
type Service struct {
	docs    DocumentScanner
	schemas SchemaReader
	queries QueryLog
	logger  *zap.Logger
}

// New creates a suggest service. queries can be nil.
func New(docs DocumentScanner, schemas SchemaReader, queries QueryLog) *Service {
	return &Service{docs: docs, schemas: schemas, queries: queries, logger: zap.NewNop()}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Suggest returns suggestions sorted by score. It never fails: an empty
// prefix or unknown type yields an empty list.
func (s *Service) Suggest(_ context.Context, req Request) []suggestion.Suggestion {
	prefix := analysis.Fold(strings.TrimSpace(req.Prefix))
	if prefix == "" {
		return []suggestion.Suggestion{}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	schemas, ok := s.targets(req.Type)
	if !ok {
		s.logger.Debug("suggest over unknown type", zap.String("type", req.Type))
		return []suggestion.Suggestion{}
	}

	c := newCollector()
	if s.queries != nil {
		for q, n := range s.queries.Frequencies() {
			if strings.HasPrefix(q, prefix) {
				c.offer(suggestion.Suggestion{Text: q, Score: float64(n), Source: suggestion.SourceQuery})
			}
		}
	}

	m := matcher{prefix: prefix, fuzzy: req.Fuzzy}
	types := make([]string, 0, len(schemas))
	for t := range schemas {
		types = append(types, t)
	}
	values := newCollector()
	for _, doc := range s.docs.Scan(req.Tenant, types) {
		sch := schemas[doc.Type()]
		for _, f := range suggestFields(sch) {
			v, ok := doc.Value(f.Name())
			if !ok {
				continue
			}
			text := strings.TrimSpace(v.String())
			if score := m.score(analysis.Fold(text)); score > 0 {
				values.add(suggestion.Suggestion{
					Text: text, Score: score, Source: suggestion.SourceFieldValue,
					Type: doc.Type(), Field: f.Name(),
				})
			}
		}
	}
	for _, sug := range values.items {
		c.offer(*sug)
	}

	out := c.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	hl := highlighter(prefix)
	for i := range out {
		out[i].Highlighted = hl.ReplaceAllString(out[i].Text, "${1}<mark>${2}</mark>")
	}
	return out
}

func (s *Service) targets(docType string) (map[string]domschema.Schema, bool) {
	types := s.schemas.Types()
	if docType != "" {
		types = []string{docType}
	}
	out := make(map[string]domschema.Schema, len(types))
	for _, t := range types {
		sch, err := s.schemas.Get(t)
		if err != nil {
			return nil, false
		}
		out[t] = sch
	}
	return out, true
}

// suggestFields are textual searchable or facetable fields without markup.
func suggestFields(sch domschema.Schema) []field.Descriptor {
	var out []field.Descriptor
	for _, f := range sch.Fields() {
		if !f.Type().IsTextual() || f.Markup() != field.MarkupNone {
			continue
		}
		if f.Has(field.Searchable) || f.Has(field.Facetable) {
			out = append(out, f)
		}
	}
	return out
}

type matcher struct {
	prefix string
	fuzzy  bool
}

// score grades a lowercase value against the prefix.
func (m matcher) score(lower string) float64 {
	if strings.HasPrefix(lower, m.prefix) {
		return scorePrefix
	}
	words := strings.Fields(lower)
	for _, w := range words {
		if strings.HasPrefix(w, m.prefix) {
			return scoreWordPrefix
		}
	}
	n := utf8.RuneCountInString(m.prefix)
	if !m.fuzzy || n < minFuzzyPrefix {
		return 0
	}
	dist := max(1, n/3)
	for _, w := range words {
		if analysis.WithinDistance(truncate(w, n), m.prefix, dist) {
			return scoreFuzzy
		}
	}
	return 0
}

func truncate(s string, runes int) string {
	i := 0
	for pos := range s {
		if i == runes {
			return s[:pos]
		}
		i++
	}
	return s
}

// highlighter matches the prefix at the start of any word.
func highlighter(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|\s)(` + regexp.QuoteMeta(prefix) + `)`)
}

// collector deduplicates suggestions by case-insensitive text.
type collector struct {
	items map[string]*suggestion.Suggestion
}

func newCollector() *collector {
	return &collector{items: make(map[string]*suggestion.Suggestion)}
}

// add sums scores of the same value across documents.
func (c *collector) add(s suggestion.Suggestion) {
	key := strings.ToLower(s.Text)
	if cur, ok := c.items[key]; ok {
		cur.Score += s.Score
		return
	}
	c.items[key] = &s
}

// offer keeps the higher scoring of two suggestions with the same text.
func (c *collector) offer(s suggestion.Suggestion) {
	key := strings.ToLower(s.Text)
	if cur, ok := c.items[key]; ok && cur.Score >= s.Score {
		return
	}
	c.items[key] = &s
}

func (c *collector) sorted() []suggestion.Suggestion {
	out := make([]suggestion.Suggestion, 0, len(c.items))
	for _, s := range c.items {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b suggestion.Suggestion) int {
		if x := cmp.Compare(b.Score, a.Score); x != 0 {
			return x
		}
		return strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	})
	return out
}
