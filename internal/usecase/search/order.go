package search

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kailas-cloud/recordex/internal/domain"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

type scored struct {
	doc   domdoc.Document
	score float64
}

// validateSort requires every sort field to be sortable in at least one
// targeted schema.
func validateSort(keys []query.SortKey, schemas []domschema.Schema) error {
	for _, k := range keys {
		ok := false
		for _, s := range schemas {
			if s.HasCapability(k.Field(), field.Sortable) {
				ok = true
				break
			}
		}
		if !ok {
			return domain.NewQueryError(k.Field(), fmt.Sprintf("field %q is not sortable", k.Field()))
		}
	}
	return nil
}

// order sorts by the explicit keys, then score descending, then id ascending.
// Documents missing a sort value go last in either direction.
func order(results []scored, keys []query.SortKey) {
	slices.SortStableFunc(results, func(a, b scored) int {
		for _, k := range keys {
			av, aok := a.doc.Value(k.Field())
			bv, bok := b.doc.Value(k.Field())
			switch {
			case !aok && !bok:
				continue
			case !aok:
				return 1
			case !bok:
				return -1
			}
			c := value.Compare(av, bv)
			if k.Desc() {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.doc.ID(), b.doc.ID())
	})
}

// paginate returns the page slice and the total page count.
func paginate(results []scored, page, pageSize int) ([]scored, int) {
	total := len(results)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start >= total {
		return nil, totalPages
	}
	end := min(start+pageSize, total)
	return results[start:end], totalPages
}
