package schema

import (
	"context"

	dombatch "github.com/kailas-cloud/recordex/internal/domain/batch"
	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
)

// Registry holds the registered schemas.
type Registry interface {
	Register(s domschema.Schema) bool
	Get(docType string) (domschema.Schema, error)
	List() []domschema.Schema
}

// Reindexer rebuilds the documents of one type.
type Reindexer interface {
	Reindex(ctx context.Context, docType string) (dombatch.Reindex, error)
}

// LocaleChecker reports whether the analyzer has rules for a locale.
type LocaleChecker interface {
	Supports(loc i18n.Locale) bool
}
