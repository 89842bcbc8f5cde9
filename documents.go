package recordex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/document/patch"
	indexinguc "github.com/kailas-cloud/recordex/internal/usecase/indexing"
)

// IndexDocument validates in against its schema and indexes it.
func (e *Engine) IndexDocument(ctx context.Context, in DocumentInput) (Document, error) {
	d, err := e.eng.Indexing.Index(ctx, toInput(in))
	if err != nil {
		return Document{}, fmt.Errorf("index document: %w", err)
	}
	return fromDocument(d), nil
}

// BulkIndex indexes every input independently. A failed item does not stop
// the others; its error is reported in the matching BatchItem.
func (e *Engine) BulkIndex(ctx context.Context, in []DocumentInput) []BatchItem {
	items := make([]indexinguc.Input, len(in))
	for i, d := range in {
		items[i] = toInput(d)
	}
	return fromBatch(e.eng.Indexing.BulkIndex(ctx, items))
}

// UpdateDocument merges fields into the stored document. A nil value removes
// the field.
func (e *Engine) UpdateDocument(ctx context.Context, id string, fields map[string]any) (Document, error) {
	p, err := patch.New(fields)
	if err != nil {
		return Document{}, fmt.Errorf("update document: %w", domain.NewValidationError("fields", err.Error()))
	}
	d, err := e.eng.Indexing.Update(ctx, id, p)
	if err != nil {
		return Document{}, fmt.Errorf("update document: %w", err)
	}
	return fromDocument(d), nil
}

// DeleteDocument removes a document.
func (e *Engine) DeleteDocument(ctx context.Context, id string) error {
	if err := e.eng.Indexing.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// GetDocument returns a document by id.
func (e *Engine) GetDocument(ctx context.Context, id string) (Document, error) {
	d, err := e.eng.Indexing.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromDocument(d), nil
}
