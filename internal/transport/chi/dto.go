package chi

import (
	"time"

	"github.com/kailas-cloud/recordex/internal/catalog"
	domanalytics "github.com/kailas-cloud/recordex/internal/domain/analytics"
	dombatch "github.com/kailas-cloud/recordex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	domhistory "github.com/kailas-cloud/recordex/internal/domain/history"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/domain/search/result"
	"github.com/kailas-cloud/recordex/internal/domain/search/suggestion"
	healthuc "github.com/kailas-cloud/recordex/internal/usecase/health"
)

// DocumentRequest is the body of POST /documents and one item of a batch.
type DocumentRequest struct {
	Type     string         `json:"type"`
	TenantID string         `json:"tenantId,omitempty"`
	Locale   string         `json:"locale,omitempty"`
	Fields   map[string]any `json:"fields"`
}

// PatchDocumentRequest merges fields into a document; null removes a field.
type PatchDocumentRequest struct {
	Fields map[string]any `json:"fields"`
}

// DocumentResponse is an indexed document.
type DocumentResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	TenantID  string         `json:"tenantId"`
	Locale    string         `json:"locale"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	IndexedAt time.Time      `json:"indexedAt"`
}

// BatchRequest is the body of POST /documents/batch.
type BatchRequest struct {
	Documents []DocumentRequest `json:"documents"`
}

// BatchItem is the outcome of one batch item.
type BatchItem struct {
	Index  int            `json:"index"`
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse reports per-item outcomes.
type BatchResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// HitResponse is one search hit.
type HitResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	TenantID   string            `json:"tenantId"`
	Score      float64           `json:"score"`
	Fields     map[string]any    `json:"fields"`
	Highlights map[string]string `json:"highlights,omitempty"`
	IndexedAt  time.Time         `json:"indexedAt"`
}

// FacetValueResponse is one facet bucket.
type FacetValueResponse struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetResponse is the grouped count of one field.
type FacetResponse struct {
	Field  string               `json:"field"`
	Labels map[string]string    `json:"labels"`
	Values []FacetValueResponse `json:"values"`
}

// SearchResponse is a page of search results.
type SearchResponse struct {
	Results     []HitResponse   `json:"results"`
	Total       int             `json:"total"`
	Page        int             `json:"page"`
	PageSize    int             `json:"pageSize"`
	TotalPages  int             `json:"totalPages"`
	Facets      []FacetResponse `json:"facets,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	TookMS      int64           `json:"took"`
	Locale      string          `json:"locale"`
}

// SuggestionResponse is one autocomplete candidate.
type SuggestionResponse struct {
	Text        string  `json:"text"`
	Highlighted string  `json:"highlighted"`
	Score       float64 `json:"score"`
	Source      string  `json:"source"`
	Type        string  `json:"entityType,omitempty"`
	Field       string  `json:"field,omitempty"`
}

// SuggestResponse lists suggestions by descending score.
type SuggestResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

// SavedSearchRequest is the body of POST /saved-searches.
type SavedSearchRequest struct {
	Name      map[string]string `json:"name"`
	Query     query.Spec        `json:"query"`
	IsDefault bool              `json:"isDefault,omitempty"`
}

// PatchSavedSearchRequest replaces the non-null parts of a saved search.
type PatchSavedSearchRequest struct {
	Name      map[string]string `json:"name,omitempty"`
	Query     *query.Spec       `json:"query,omitempty"`
	IsDefault *bool             `json:"isDefault,omitempty"`
}

// SavedSearchResponse is a stored saved search.
type SavedSearchResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Name      map[string]string `json:"name"`
	Query     query.Spec        `json:"query"`
	IsDefault bool              `json:"isDefault"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// HistoryEntryResponse is one executed search.
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Entities    []string  `json:"entities,omitempty"`
	ResultCount int       `json:"resultCount"`
	Timestamp   time.Time `json:"timestamp"`
}

// ClearResponse reports how many items were removed.
type ClearResponse struct {
	Deleted int `json:"deleted"`
}

// QueryCountResponse is a normalized query and its frequency.
type QueryCountResponse struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// AnalyticsResponse is a snapshot of the search aggregates.
type AnalyticsResponse struct {
	TotalSearches     int64                `json:"totalSearches"`
	UniqueUsers       int                  `json:"uniqueUsers"`
	ByEntity          map[string]int64     `json:"searchesByEntity"`
	AverageLatencyMS  float64              `json:"averageLatencyMs"`
	AverageResults    float64              `json:"averageResults"`
	TopQueries        []QueryCountResponse `json:"topQueries"`
	ZeroResultQueries []string             `json:"zeroResultQueries"`
}

// ReindexResponse counts the outcome of reindexing one type.
type ReindexResponse struct {
	Type      string `json:"type"`
	Reindexed int    `json:"reindexed"`
	Failed    int    `json:"failed"`
}

// ReindexAllResponse aggregates per-type reindex counts.
type ReindexAllResponse struct {
	Types     []ReindexResponse `json:"types"`
	Reindexed int               `json:"reindexed"`
	Failed    int               `json:"failed"`
}

// SchemaListResponse lists registered schemas.
type SchemaListResponse struct {
	Schemas []catalog.Schema `json:"schemas"`
}

// PutSchemaResponse reports a schema registration.
type PutSchemaResponse struct {
	Schema  catalog.Schema  `json:"schema"`
	Created bool            `json:"created"`
	Reindex ReindexResponse `json:"reindex"`
}

// FieldsResponse lists the fields of a type carrying one capability.
type FieldsResponse struct {
	Type       string          `json:"type"`
	Capability string          `json:"capability"`
	Fields     []catalog.Field `json:"fields"`
}

// StatsResponse counts documents per type.
type StatsResponse struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"byType"`
}

// HealthResponse aggregates component checks.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToResponse(d domdoc.Document) DocumentResponse {
	return DocumentResponse{
		ID:        d.ID(),
		Type:      d.Type(),
		TenantID:  d.Tenant(),
		Locale:    string(d.Locale()),
		Fields:    d.Fields(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
		IndexedAt: d.IndexedAt(),
	}
}

func batchToResponse(results []dombatch.Result) BatchResponse {
	resp := BatchResponse{Items: make([]BatchItem, len(results))}
	for i, r := range results {
		item := BatchItem{Index: r.Index(), ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			item.Error = &ErrorResponse{Code: errorCode(r.Err()), Message: errorMessage(r.Err())}
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Items[i] = item
	}
	return resp
}

func pageToResponse(p result.Page) SearchResponse {
	resp := SearchResponse{
		Results:     make([]HitResponse, len(p.Hits)),
		Total:       p.Total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages,
		Suggestions: p.Suggestions,
		TookMS:      p.Took.Milliseconds(),
		Locale:      string(p.Locale),
	}
	for i, h := range p.Hits {
		resp.Results[i] = HitResponse{
			ID:         h.ID(),
			Type:       h.Type(),
			TenantID:   h.Tenant(),
			Score:      h.Score(),
			Fields:     h.Fields(),
			Highlights: h.Highlights(),
			IndexedAt:  h.IndexedAt(),
		}
	}
	for _, f := range p.Facets {
		fr := FacetResponse{
			Field:  f.Field(),
			Labels: f.Labels().Map(),
			Values: make([]FacetValueResponse, len(f.Values())),
		}
		for i, v := range f.Values() {
			fr.Values[i] = FacetValueResponse{Value: v.Value, Count: v.Count}
		}
		resp.Facets = append(resp.Facets, fr)
	}
	return resp
}

func suggestionsToResponse(list []suggestion.Suggestion) SuggestResponse {
	resp := SuggestResponse{Suggestions: make([]SuggestionResponse, len(list))}
	for i, s := range list {
		resp.Suggestions[i] = SuggestionResponse{
			Text:        s.Text,
			Highlighted: s.Highlighted,
			Score:       s.Score,
			Source:      string(s.Source),
			Type:        s.Type,
			Field:       s.Field,
		}
	}
	return resp
}

func savedToResponse(s domsaved.SavedSearch) SavedSearchResponse {
	return SavedSearchResponse{
		ID:        s.ID(),
		UserID:    s.Owner(),
		Name:      s.Name().Map(),
		Query:     s.Query(),
		IsDefault: s.IsDefault(),
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
	}
}

func historyToResponse(entries []domhistory.Entry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			ID:          e.ID(),
			Query:       e.Query(),
			Entities:    e.Types(),
			ResultCount: e.ResultCount(),
			Timestamp:   e.At(),
		}
	}
	return out
}

func analyticsToResponse(s domanalytics.Snapshot) AnalyticsResponse {
	resp := AnalyticsResponse{
		TotalSearches:     s.TotalSearches,
		UniqueUsers:       s.UniqueUsers,
		ByEntity:          s.ByType,
		AverageLatencyMS:  float64(s.AverageLatency) / float64(time.Millisecond),
		AverageResults:    s.AverageResults,
		TopQueries:        make([]QueryCountResponse, len(s.TopQueries)),
		ZeroResultQueries: s.ZeroResultQueries,
	}
	for i, q := range s.TopQueries {
		resp.TopQueries[i] = QueryCountResponse{Query: q.Query, Count: q.Count}
	}
	return resp
}

func reindexToResponse(r dombatch.Reindex) ReindexResponse {
	return ReindexResponse{Type: r.Type, Reindexed: r.Reindexed, Failed: r.Failed}
}

func summaryToResponse(s dombatch.Summary) ReindexAllResponse {
	resp := ReindexAllResponse{
		Types:     make([]ReindexResponse, len(s.Types)),
		Reindexed: s.Reindexed,
		Failed:    s.Failed,
	}
	for i, r := range s.Types {
		resp.Types[i] = reindexToResponse(r)
	}
	return resp
}

func healthToResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
