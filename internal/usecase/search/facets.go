package search

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/search/result"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
)

// facets counts distinct non-null values over the post-filter results.
// Fields not facetable in any targeted schema are skipped.
func facets(names []string, schemas []domschema.Schema, results []scored) []result.Facet {
	out := make([]result.Facet, 0, len(names))
	for _, name := range names {
		labels, ok := facetLabels(name, schemas)
		if !ok {
			continue
		}
		counts := make(map[string]int)
		for _, r := range results {
			if v, present := r.doc.Value(name); present {
				counts[v.String()]++
			}
		}
		values := make([]result.FacetValue, 0, len(counts))
		for v, c := range counts {
			values = append(values, result.FacetValue{Value: v, Count: c})
		}
		slices.SortFunc(values, func(a, b result.FacetValue) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return cmp.Compare(a.Value, b.Value)
		})
		out = append(out, result.NewFacet(name, labels, values))
	}
	return out
}

func facetLabels(name string, schemas []domschema.Schema) (i18n.Labels, bool) {
	for _, s := range schemas {
		if f, ok := s.Field(name); ok && f.Has(field.Facetable) {
			return f.Labels(), true
		}
	}
	return nil, false
}
