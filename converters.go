package recordex

import (
	"fmt"

	"github.com/kailas-cloud/recordex/internal/catalog"
	dombatch "github.com/kailas-cloud/recordex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	domhistory "github.com/kailas-cloud/recordex/internal/domain/history"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/search/result"
	indexinguc "github.com/kailas-cloud/recordex/internal/usecase/indexing"
)

func toInput(in DocumentInput) indexinguc.Input {
	return indexinguc.Input{Type: in.Type, Tenant: in.Tenant, Fields: in.Fields, Locale: in.Locale}
}

func fromDocument(d domdoc.Document) Document {
	return Document{
		ID:        d.ID(),
		Type:      d.Type(),
		Tenant:    d.Tenant(),
		Locale:    string(d.Locale()),
		Fields:    d.Fields(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
		IndexedAt: d.IndexedAt(),
	}
}

func fromBatch(results []dombatch.Result) []BatchItem {
	out := make([]BatchItem, len(results))
	for i, r := range results {
		out[i] = BatchItem{Index: r.Index(), ID: r.ID(), Err: r.Err()}
	}
	return out
}

func fromPage(p result.Page) SearchResult {
	out := SearchResult{
		Hits:        make([]Hit, len(p.Hits)),
		Total:       p.Total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages,
		Suggestions: p.Suggestions,
		Took:        p.Took,
		Locale:      string(p.Locale),
	}
	for i, h := range p.Hits {
		out.Hits[i] = Hit{
			ID:         h.ID(),
			Type:       h.Type(),
			Tenant:     h.Tenant(),
			Score:      h.Score(),
			Fields:     h.Fields(),
			Highlights: h.Highlights(),
			IndexedAt:  h.IndexedAt(),
		}
	}
	for _, f := range p.Facets {
		facet := Facet{Field: f.Field(), Labels: f.Labels().Map(), Values: make([]FacetValue, len(f.Values()))}
		for i, v := range f.Values() {
			facet.Values[i] = FacetValue{Value: v.Value, Count: v.Count}
		}
		out.Facets = append(out.Facets, facet)
	}
	return out
}

func fromSaved(s domsaved.SavedSearch) SavedSearch {
	return SavedSearch{
		ID:        s.ID(),
		UserID:    s.Owner(),
		Name:      s.Name().Map(),
		Query:     s.Query(),
		IsDefault: s.IsDefault(),
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
	}
}

func fromSavedList(list []domsaved.SavedSearch) []SavedSearch {
	out := make([]SavedSearch, len(list))
	for i, s := range list {
		out[i] = fromSaved(s)
	}
	return out
}

func fromHistory(entries []domhistory.Entry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			ID:          e.ID(),
			Query:       e.Query(),
			Types:       e.Types(),
			ResultCount: e.ResultCount(),
			At:          e.At(),
		}
	}
	return out
}

func fromSchemas(list []domschema.Schema) []Schema {
	out := make([]Schema, len(list))
	for i, s := range list {
		out[i] = catalog.FromDomain(s)
	}
	return out
}

func toDomainSchemas(list []Schema) ([]domschema.Schema, error) {
	out := make([]domschema.Schema, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, dup := seen[s.Type]; dup {
			return nil, fmt.Errorf("duplicate schema %q", s.Type)
		}
		seen[s.Type] = struct{}{}
		ds, err := s.ToDomain()
		if err != nil {
			return nil, err //nolint:wrapcheck // already names the schema
		}
		out = append(out, ds)
	}
	return out, nil
}
