// Package query defines the validated search query and its serializable form.
package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
)

// MaxQueryLength is the maximum free-text length in bytes.
const MaxQueryLength = 1024

// Operator selects how multiple query terms combine.
type Operator string

// Operator constants.
const (
	And Operator = "AND"
	Or  Operator = "OR"
)

// SortSpec is the serializable form of a sort key.
type SortSpec struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"` // asc (default) or desc
}

// SortKey is a validated sort key.
type SortKey struct {
	field string
	desc  bool
}

// Field returns the sort field name.
func (k SortKey) Field() string { return k.field }

// Desc reports descending order.
func (k SortKey) Desc() bool { return k.desc }

// Spec is the serializable search query, as accepted over the wire and
// persisted in saved searches.
type Spec struct {
	Query         string        `json:"query"`
	Types         []string      `json:"entities,omitempty"`
	Filters       []filter.Spec `json:"filters,omitempty"`
	Sort          []SortSpec    `json:"sort,omitempty"`
	Page          int           `json:"page,omitempty"`
	PageSize      int           `json:"pageSize,omitempty"`
	Facets        []string      `json:"facets,omitempty"`
	Highlight     bool          `json:"highlight,omitempty"`
	Fuzzy         bool          `json:"fuzzy,omitempty"`
	FuzzyDistance int           `json:"fuzzyDistance,omitempty"`
	Operator      string        `json:"operator,omitempty"`
	Fields        []string      `json:"fields,omitempty"`
	MinScore      float64       `json:"minScore,omitempty"`
	Locale        string        `json:"locale,omitempty"`
	Tenant        string        `json:"tenantId,omitempty"`
}

// Limits bounds pagination and fuzzy matching.
type Limits struct {
	DefaultPageSize      int
	MaxPageSize          int
	DefaultFuzzyDistance int
	MaxFuzzyDistance     int
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: 20, MaxPageSize: 100, DefaultFuzzyDistance: 2, MaxFuzzyDistance: 3}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = d.DefaultPageSize
	}
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = d.MaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	if l.DefaultFuzzyDistance <= 0 {
		l.DefaultFuzzyDistance = d.DefaultFuzzyDistance
	}
	if l.MaxFuzzyDistance <= 0 {
		l.MaxFuzzyDistance = d.MaxFuzzyDistance
	}
	return l
}

// Query is a validated search query (immutable value object).
type Query struct {
	text          string
	types         []string
	filters       []filter.Filter
	sort          []SortKey
	page          int
	pageSize      int
	facets        []string
	highlight     bool
	fuzzy         bool
	fuzzyDistance int
	operator      Operator
	fields        []string
	minScore      float64
	locale        i18n.Locale
	tenant        string
}

// New validates a Spec and applies defaults: page 1, the default page size
// clamped to the maximum, operator AND, auto locale.
func New(spec Spec, limits Limits) (Query, error) {
	limits = limits.withDefaults()

	if len(spec.Query) > MaxQueryLength {
		return Query{}, domain.NewQueryError("query", fmt.Sprintf("too long (max %d bytes)", MaxQueryLength))
	}

	q := Query{
		text:      spec.Query,
		types:     uniqueTrimmed(spec.Types),
		facets:    uniqueTrimmed(spec.Facets),
		fields:    uniqueTrimmed(spec.Fields),
		highlight: spec.Highlight,
		fuzzy:     spec.Fuzzy,
		locale:    i18n.ParseLocale(spec.Locale),
		tenant:    strings.TrimSpace(spec.Tenant),
	}

	if len(spec.Filters) > filter.MaxFilters {
		return Query{}, domain.NewQueryError("filters", fmt.Sprintf("too many filters (max %d)", filter.MaxFilters))
	}
	for _, fs := range spec.Filters {
		f, err := filter.FromSpec(fs)
		if err != nil {
			return Query{}, err
		}
		q.filters = append(q.filters, f)
	}

	for _, ss := range spec.Sort {
		if ss.Field == "" {
			return Query{}, domain.NewQueryError("sort", "sort field is required")
		}
		switch strings.ToLower(ss.Order) {
		case "", "asc":
			q.sort = append(q.sort, SortKey{field: ss.Field})
		case "desc":
			q.sort = append(q.sort, SortKey{field: ss.Field, desc: true})
		default:
			return Query{}, domain.NewQueryError(ss.Field, fmt.Sprintf("sort order must be asc or desc, got %q", ss.Order))
		}
	}

	q.page = spec.Page
	if q.page < 1 {
		q.page = 1
	}
	q.pageSize = spec.PageSize
	if q.pageSize < 1 {
		q.pageSize = limits.DefaultPageSize
	}
	if q.pageSize > limits.MaxPageSize {
		q.pageSize = limits.MaxPageSize
	}

	switch {
	case spec.FuzzyDistance < 0:
		return Query{}, domain.NewQueryError("fuzzyDistance", "must be >= 0")
	case spec.FuzzyDistance == 0:
		q.fuzzyDistance = limits.DefaultFuzzyDistance
	case spec.FuzzyDistance > limits.MaxFuzzyDistance:
		q.fuzzyDistance = limits.MaxFuzzyDistance
	default:
		q.fuzzyDistance = spec.FuzzyDistance
	}

	switch Operator(strings.ToUpper(strings.TrimSpace(spec.Operator))) {
	case "", And:
		q.operator = And
	case Or:
		q.operator = Or
	default:
		return Query{}, domain.NewQueryError("operator", fmt.Sprintf("must be AND or OR, got %q", spec.Operator))
	}

	if spec.MinScore < 0 {
		return Query{}, domain.NewQueryError("minScore", "must be >= 0")
	}
	q.minScore = spec.MinScore

	return q, nil
}

// Text returns the raw free-text query.
func (q Query) Text() string { return q.text }

// Types returns the targeted document types; empty means all registered types.
func (q Query) Types() []string { return q.types }

// Filters returns the conjunctive filters.
func (q Query) Filters() []filter.Filter { return q.filters }

// Sort returns the sort keys in priority order.
func (q Query) Sort() []SortKey { return q.sort }

// Page returns the 1-based page number.
func (q Query) Page() int { return q.page }

// PageSize returns the page size.
func (q Query) PageSize() int { return q.pageSize }

// Facets returns the requested facet fields.
func (q Query) Facets() []string { return q.facets }

// Highlight reports whether hits carry highlighted fragments.
func (q Query) Highlight() bool { return q.highlight }

// Fuzzy reports whether edit-distance matching is enabled.
func (q Query) Fuzzy() bool { return q.fuzzy }

// FuzzyDistance returns the maximum edit distance.
func (q Query) FuzzyDistance() int { return q.fuzzyDistance }

// Operator returns how terms combine.
func (q Query) Operator() Operator { return q.operator }

// Fields returns the scoring allow-list; empty means all searchable fields.
func (q Query) Fields() []string { return q.fields }

// MinScore returns the score threshold.
func (q Query) MinScore() float64 { return q.minScore }

// Locale returns the requested locale, possibly i18n.Auto.
func (q Query) Locale() i18n.Locale { return q.locale }

// Tenant returns the tenant scope; empty means all tenants.
func (q Query) Tenant() string { return q.tenant }

// Spec returns the normalized serializable form.
func (q Query) Spec() Spec {
	s := Spec{
		Query:         q.text,
		Types:         q.types,
		Page:          q.page,
		PageSize:      q.pageSize,
		Facets:        q.facets,
		Highlight:     q.highlight,
		Fuzzy:         q.fuzzy,
		FuzzyDistance: q.fuzzyDistance,
		Operator:      string(q.operator),
		Fields:        q.fields,
		MinScore:      q.minScore,
		Locale:        string(q.locale),
		Tenant:        q.tenant,
	}
	for _, f := range q.filters {
		s.Filters = append(s.Filters, f.Spec())
	}
	for _, k := range q.sort {
		order := "asc"
		if k.desc {
			order = "desc"
		}
		s.Sort = append(s.Sort, SortSpec{Field: k.field, Order: order})
	}
	return s
}

func uniqueTrimmed(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
