package suggest

import (
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
)

// DocumentScanner lists documents in scope.
type DocumentScanner interface {
	Scan(tenant string, types []string) []domdoc.Document
}

// SchemaReader resolves document types to schemas.
type SchemaReader interface {
	Get(docType string) (domschema.Schema, error)
	Types() []string
}

// QueryLog exposes normalized query frequencies.
type QueryLog interface {
	Frequencies() map[string]int
}
