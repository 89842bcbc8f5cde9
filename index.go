package recordex

import (
	"context"
	"fmt"
)

// TypedIndex is a schema-bound handle that maps Go structs to documents of
// one type and tenant. Field names come from `recordex` struct tags:
//
//	type Invoice struct {
//		ID     string  `recordex:",id"`
//		Number string  `recordex:"number"`
//		Amount float64 `recordex:"amount"`
//		Notes  string  `recordex:"-"`
//	}
type TypedIndex[T any] struct {
	engine  *Engine
	docType string
	tenant  string
	meta    *recordMeta
}

// NewIndex creates a typed handle for docType documents of tenant. T must
// be a struct; the registered schema is checked at construction time.
func NewIndex[T any](e *Engine, docType, tenant string) (*TypedIndex[T], error) {
	meta, err := parseRecord[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", docType, err)
	}
	if _, err := e.GetSchema(context.Background(), docType); err != nil {
		return nil, fmt.Errorf("new index %q: %w", docType, err)
	}
	return &TypedIndex[T]{engine: e, docType: docType, tenant: tenant, meta: meta}, nil
}

// Add indexes item as a new document and returns its id.
func (idx *TypedIndex[T]) Add(ctx context.Context, item T) (string, error) {
	fields, err := idx.meta.toFields(item)
	if err != nil {
		return "", fmt.Errorf("add: %w", err)
	}
	doc, err := idx.engine.IndexDocument(ctx, DocumentInput{Type: idx.docType, Tenant: idx.tenant, Fields: fields})
	if err != nil {
		return "", fmt.Errorf("add: %w", err)
	}
	return doc.ID, nil
}

// AddBatch indexes items independently; see Engine.BulkIndex.
func (idx *TypedIndex[T]) AddBatch(ctx context.Context, items []T) ([]BatchItem, error) {
	docs := make([]DocumentInput, len(items))
	for i, item := range items {
		fields, err := idx.meta.toFields(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		docs[i] = DocumentInput{Type: idx.docType, Tenant: idx.tenant, Fields: fields}
	}
	return idx.engine.BulkIndex(ctx, docs), nil
}

// Update replaces the stored fields of item with its current values. T must
// have an id field.
func (idx *TypedIndex[T]) Update(ctx context.Context, item T) error {
	id := idx.meta.id(item)
	if id == "" {
		return fmt.Errorf("update: item has no id")
	}
	fields, err := idx.meta.toFields(item)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if _, err := idx.engine.UpdateDocument(ctx, id, fields); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// Get retrieves a typed item by id. Documents of another type or tenant
// are reported as not found.
func (idx *TypedIndex[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := idx.engine.GetDocument(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("get: %w", err)
	}
	if doc.Type != idx.docType || doc.Tenant != idx.tenant {
		return zero, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return idx.decode(doc.ID, doc.Fields)
}

// Delete removes an item by id.
func (idx *TypedIndex[T]) Delete(ctx context.Context, id string) error {
	return idx.engine.DeleteDocument(ctx, id)
}

// Count returns the number of documents of this type across all tenants.
func (idx *TypedIndex[T]) Count(ctx context.Context) int {
	return idx.engine.Stats(ctx).ByType[idx.docType]
}

// Search returns a fluent search builder scoped to this type and tenant.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}

func (idx *TypedIndex[T]) decode(id string, fields map[string]any) (T, error) {
	item, ok := idx.meta.fromFields(id, fields).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("decode %s: type assertion failed", id)
	}
	return item, nil
}
