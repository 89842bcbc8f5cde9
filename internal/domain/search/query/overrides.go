package query

import "github.com/kailas-cloud/recordex/internal/domain/search/filter"

// Overrides replaces selected parts of a stored Spec. Nil fields leave the
// stored value unchanged.
type Overrides struct {
	Query         *string        `json:"query,omitempty"`
	Types         *[]string      `json:"entities,omitempty"`
	Filters       *[]filter.Spec `json:"filters,omitempty"`
	Sort          *[]SortSpec    `json:"sort,omitempty"`
	Page          *int           `json:"page,omitempty"`
	PageSize      *int           `json:"pageSize,omitempty"`
	Facets        *[]string      `json:"facets,omitempty"`
	Highlight     *bool          `json:"highlight,omitempty"`
	Fuzzy         *bool          `json:"fuzzy,omitempty"`
	FuzzyDistance *int           `json:"fuzzyDistance,omitempty"`
	Operator      *string        `json:"operator,omitempty"`
	Fields        *[]string      `json:"fields,omitempty"`
	MinScore      *float64       `json:"minScore,omitempty"`
	Locale        *string        `json:"locale,omitempty"`
	Tenant        *string        `json:"tenantId,omitempty"`
}

// Merge returns s with every non-nil override applied.
func (s Spec) Merge(o Overrides) Spec {
	if o.Query != nil {
		s.Query = *o.Query
	}
	if o.Types != nil {
		s.Types = *o.Types
	}
	if o.Filters != nil {
		s.Filters = *o.Filters
	}
	if o.Sort != nil {
		s.Sort = *o.Sort
	}
	if o.Page != nil {
		s.Page = *o.Page
	}
	if o.PageSize != nil {
		s.PageSize = *o.PageSize
	}
	if o.Facets != nil {
		s.Facets = *o.Facets
	}
	if o.Highlight != nil {
		s.Highlight = *o.Highlight
	}
	if o.Fuzzy != nil {
		s.Fuzzy = *o.Fuzzy
	}
	if o.FuzzyDistance != nil {
		s.FuzzyDistance = *o.FuzzyDistance
	}
	if o.Operator != nil {
		s.Operator = *o.Operator
	}
	if o.Fields != nil {
		s.Fields = *o.Fields
	}
	if o.MinScore != nil {
		s.MinScore = *o.MinScore
	}
	if o.Locale != nil {
		s.Locale = *o.Locale
	}
	if o.Tenant != nil {
		s.Tenant = *o.Tenant
	}
	return s
}
