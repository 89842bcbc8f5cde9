package recordex

import (
	"time"

	"github.com/kailas-cloud/recordex/internal/catalog"
	domanalytics "github.com/kailas-cloud/recordex/internal/domain/analytics"
	dombatch "github.com/kailas-cloud/recordex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/domain/search/suggestion"
)

// Schema is the declarative form of a document type, as found in catalog YAML.
type Schema = catalog.Schema

// Field is one field of a Schema.
type Field = catalog.Field

// SearchQuery describes a search. Zero fields take engine defaults.
type SearchQuery = query.Spec

// Sort is one sort key of a SearchQuery.
type Sort = query.SortSpec

// Filter is one filter clause of a SearchQuery.
type Filter = filter.Spec

// SearchOverrides replaces the non-nil fields of a saved query on execution.
type SearchOverrides = query.Overrides

// Suggestion is one autocomplete candidate.
type Suggestion = suggestion.Suggestion

// Analytics is a snapshot of the search aggregates.
type Analytics = domanalytics.Snapshot

// QueryCount is a normalized query and how often it ran.
type QueryCount = domanalytics.QueryCount

// ReindexResult counts the outcome of reindexing one type.
type ReindexResult = dombatch.Reindex

// ReindexSummary totals ReindexAll.
type ReindexSummary = dombatch.Summary

// Stats reports live document counts.
type Stats = domdoc.Stats

// Event is an engine notification delivered to WithEventHandler subscribers.
type Event = event.Event

// EventName identifies an event kind.
type EventName = event.Name

// Event names.
const (
	EventDocumentIndexed  = event.DocumentIndexed
	EventDocumentUpdated  = event.DocumentUpdated
	EventDocumentDeleted  = event.DocumentDeleted
	EventSearchExecuted   = event.SearchExecuted
	EventHistoryCleared   = event.HistoryCleared
	EventSearchSaved      = event.SearchSaved
	EventSavedDeleted     = event.SavedDeleted
	EventReindexCompleted = event.ReindexCompleted
	EventIndexCleared     = event.IndexCleared
	EventSchemaRegistered = event.SchemaRegistered
)

// Filter operators.
const (
	OpEquals      = string(filter.Equals)
	OpNotEquals   = string(filter.NotEquals)
	OpContains    = string(filter.Contains)
	OpStartsWith  = string(filter.StartsWith)
	OpEndsWith    = string(filter.EndsWith)
	OpGreaterThan = string(filter.GreaterThan)
	OpLessThan    = string(filter.LessThan)
	OpBetween     = string(filter.Between)
	OpIn          = string(filter.In)
	OpNotIn       = string(filter.NotIn)
	OpExists      = string(filter.Exists)
	OpRange       = string(filter.Range)
)

// DocumentInput is a document to index.
type DocumentInput struct {
	Type   string
	Tenant string
	Fields map[string]any
	// Locale is empty for the schema locale or "auto" to detect it from the content.
	Locale string
}

// Document is an indexed document. Fields is the caller's original field map.
type Document struct {
	ID        string
	Type      string
	Tenant    string
	Locale    string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
	IndexedAt time.Time
}

// BatchItem is the outcome of one BulkIndex input, in input order.
type BatchItem struct {
	Index int
	ID    string
	Err   error
}

// Hit is one search result.
type Hit struct {
	ID         string
	Type       string
	Tenant     string
	Score      float64
	Fields     map[string]any
	Highlights map[string]string
	IndexedAt  time.Time
}

// FacetValue is one facet bucket.
type FacetValue struct {
	Value string
	Count int
}

// Facet is the value distribution of one field over the matching documents.
type Facet struct {
	Field  string
	Labels map[string]string
	Values []FacetValue
}

// SearchResult is one page of search results.
type SearchResult struct {
	Hits        []Hit
	Total       int
	Page        int
	PageSize    int
	TotalPages  int
	Facets      []Facet
	Suggestions []string
	Took        time.Duration
	Locale      string
}

// SuggestRequest asks for autocomplete candidates.
type SuggestRequest struct {
	Prefix string
	Type   string
	Tenant string
	Limit  int
	Fuzzy  bool
}

// SavedSearchInput creates a saved search. Name maps locale to label.
type SavedSearchInput struct {
	Name      map[string]string
	Query     SearchQuery
	IsDefault bool
}

// SavedSearchUpdate changes the non-nil parts of a saved search.
type SavedSearchUpdate struct {
	Name      map[string]string
	Query     *SearchQuery
	IsDefault *bool
}

// SavedSearch is a user's named query.
type SavedSearch struct {
	ID        string
	UserID    string
	Name      map[string]string
	Query     SearchQuery
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HistoryEntry is one executed search in a user's history.
type HistoryEntry struct {
	ID          string
	Query       string
	Types       []string
	ResultCount int
	At          time.Time
}
