package recordex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recordex/internal/catalog"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
)

// Reindex recomputes the derived index state of every document of docType.
// Documents that fail are skipped and counted.
func (e *Engine) Reindex(ctx context.Context, docType string) (ReindexResult, error) {
	r, err := e.eng.Indexing.Reindex(ctx, docType)
	if err != nil {
		return ReindexResult{}, fmt.Errorf("reindex: %w", err)
	}
	return r, nil
}

// ReindexAll reindexes every registered type concurrently.
func (e *Engine) ReindexAll(ctx context.Context) (ReindexSummary, error) {
	s, err := e.eng.Indexing.ReindexAll(ctx)
	if err != nil {
		return ReindexSummary{}, fmt.Errorf("reindex all: %w", err)
	}
	return s, nil
}

// ClearIndex drops the documents of docType. An empty tenant clears every tenant.
func (e *Engine) ClearIndex(ctx context.Context, docType, tenant string) (int, error) {
	n, err := e.eng.Indexing.Clear(ctx, docType, tenant)
	if err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}
	return n, nil
}

// Stats reports live document counts per type.
func (e *Engine) Stats(ctx context.Context) Stats {
	return e.eng.Indexing.Stats(ctx)
}

// ListSchemas returns every registered schema.
func (e *Engine) ListSchemas(ctx context.Context) []Schema {
	return fromSchemas(e.eng.SchemaAdmin.List(ctx))
}

// GetSchema returns the schema of docType.
func (e *Engine) GetSchema(ctx context.Context, docType string) (Schema, error) {
	s, err := e.eng.SchemaAdmin.Get(ctx, docType)
	if err != nil {
		return Schema{}, fmt.Errorf("get schema: %w", err)
	}
	return catalog.FromDomain(s), nil
}

// PutSchema registers s, replacing an existing schema of the same type, and
// reindexes that type's documents. It reports whether the type is new.
func (e *Engine) PutSchema(ctx context.Context, s Schema) (created bool, reindexed ReindexResult, err error) {
	ds, err := s.ToDomain()
	if err != nil {
		return false, ReindexResult{}, fmt.Errorf("put schema: %w", err)
	}
	r, err := e.eng.SchemaAdmin.Put(ctx, ds)
	if err != nil {
		return false, ReindexResult{}, fmt.Errorf("put schema: %w", err)
	}
	return r.Created, r.Reindex, nil
}

// SearchableFields returns the fields of docType matched by free-text queries.
func (e *Engine) SearchableFields(ctx context.Context, docType string) ([]Field, error) {
	return e.fields(ctx, docType, field.Searchable)
}

// FilterableFields returns the fields of docType flagged filterable.
func (e *Engine) FilterableFields(ctx context.Context, docType string) ([]Field, error) {
	return e.fields(ctx, docType, field.Filterable)
}

// SortableFields returns the fields of docType usable as sort keys.
func (e *Engine) SortableFields(ctx context.Context, docType string) ([]Field, error) {
	return e.fields(ctx, docType, field.Sortable)
}

// FacetableFields returns the fields of docType that facets can be computed on.
func (e *Engine) FacetableFields(ctx context.Context, docType string) ([]Field, error) {
	return e.fields(ctx, docType, field.Facetable)
}

func (e *Engine) fields(ctx context.Context, docType string, c field.Capability) ([]Field, error) {
	list, err := e.eng.SchemaAdmin.Fields(ctx, docType, c.String())
	if err != nil {
		return nil, fmt.Errorf("%s fields: %w", c, err)
	}
	out := make([]Field, len(list))
	for i, d := range list {
		out[i] = catalog.FieldFromDomain(d)
	}
	return out, nil
}
