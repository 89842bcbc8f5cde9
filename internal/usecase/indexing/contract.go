package indexing

import (
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
)

// Store defines the document storage contract.
type Store interface {
	Put(doc domdoc.Document) error
	Get(id string) (domdoc.Document, error)
	Update(id string, fn func(domdoc.Document) (domdoc.Document, error)) (domdoc.Document, error)
	Delete(id string) error
	Rewrite(docType string, fn func(domdoc.Document) (domdoc.Document, error)) (ok, failed int)
	Clear(docType, tenant string) int
	Stats() domdoc.Stats
}

// SchemaReader resolves document types to schemas.
type SchemaReader interface {
	Get(docType string) (domschema.Schema, error)
	Types() []string
}

// LocaleResolver validates or detects document locales.
type LocaleResolver interface {
	ResolveLocale(requested i18n.Locale, text string) (i18n.Locale, error)
}
