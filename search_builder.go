package recordex

import (
	"context"
	"fmt"
)

// TypedHit is a typed search result.
type TypedHit[T any] struct {
	Item       T
	Score      float64
	Highlights map[string]string
}

// TypedResult is one page of typed results.
type TypedResult[T any] struct {
	Hits        []TypedHit[T]
	Total       int
	Page        int
	TotalPages  int
	Facets      []Facet
	Suggestions []string
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx  *TypedIndex[T]
	spec SearchQuery
	user string
}

// Query sets the free-text query.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.spec.Query = q
	return b
}

// Where adds a filter clause. secondary is the upper bound for BETWEEN and RANGE.
func (b *SearchBuilder[T]) Where(field, op string, value any, secondary ...any) *SearchBuilder[T] {
	f := Filter{Field: field, Operator: op, Value: value}
	if len(secondary) > 0 {
		f.SecondaryValue = secondary[0]
	}
	b.spec.Filters = append(b.spec.Filters, f)
	return b
}

// Equals adds an EQUALS filter.
func (b *SearchBuilder[T]) Equals(field string, value any) *SearchBuilder[T] {
	return b.Where(field, OpEquals, value)
}

// SortBy adds a sort key.
func (b *SearchBuilder[T]) SortBy(field string, desc bool) *SearchBuilder[T] {
	order := "asc"
	if desc {
		order = "desc"
	}
	b.spec.Sort = append(b.spec.Sort, Sort{Field: field, Order: order})
	return b
}

// Facet requests value counts for field.
func (b *SearchBuilder[T]) Facet(field string) *SearchBuilder[T] {
	b.spec.Facets = append(b.spec.Facets, field)
	return b
}

// Fuzzy enables typo-tolerant matching within distance edits.
// A zero distance uses the engine default.
func (b *SearchBuilder[T]) Fuzzy(distance int) *SearchBuilder[T] {
	b.spec.Fuzzy = true
	b.spec.FuzzyDistance = distance
	return b
}

// Any switches to OR semantics: a document matching any term is a hit.
func (b *SearchBuilder[T]) Any() *SearchBuilder[T] {
	b.spec.Operator = "OR"
	return b
}

// Highlight requests <em> highlighted field snippets.
func (b *SearchBuilder[T]) Highlight() *SearchBuilder[T] {
	b.spec.Highlight = true
	return b
}

// Page selects the 1-based page and its size.
func (b *SearchBuilder[T]) Page(page, size int) *SearchBuilder[T] {
	b.spec.Page = page
	b.spec.PageSize = size
	return b
}

// As records the search in userID's history.
func (b *SearchBuilder[T]) As(userID string) *SearchBuilder[T] {
	b.user = userID
	return b
}

// Do executes the search and returns typed results.
func (b *SearchBuilder[T]) Do(ctx context.Context) (TypedResult[T], error) {
	spec := b.spec
	spec.Types = []string{b.idx.docType}
	spec.Tenant = b.idx.tenant

	res, err := b.idx.engine.Search(ctx, spec, b.user)
	if err != nil {
		return TypedResult[T]{}, fmt.Errorf("typed search: %w", err)
	}
	out := TypedResult[T]{
		Hits:        make([]TypedHit[T], 0, len(res.Hits)),
		Total:       res.Total,
		Page:        res.Page,
		TotalPages:  res.TotalPages,
		Facets:      res.Facets,
		Suggestions: res.Suggestions,
	}
	for _, h := range res.Hits {
		item, err := b.idx.decode(h.ID, h.Fields)
		if err != nil {
			return TypedResult[T]{}, err
		}
		out.Hits = append(out.Hits, TypedHit[T]{Item: item, Score: h.Score, Highlights: h.Highlights})
	}
	return out, nil
}
