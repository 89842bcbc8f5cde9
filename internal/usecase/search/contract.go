package search

import (
	"github.com/kailas-cloud/recordex/internal/analysis"
	domanalytics "github.com/kailas-cloud/recordex/internal/domain/analytics"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	domhistory "github.com/kailas-cloud/recordex/internal/domain/history"
	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
)

// DocumentScanner returns in-scope document snapshots.
type DocumentScanner interface {
	Scan(tenant string, types []string) []domdoc.Document
}

// SchemaReader resolves document types to schemas.
type SchemaReader interface {
	Get(docType string) (domschema.Schema, error)
	Types() []string
}

// Analyzer normalizes query text.
type Analyzer interface {
	Terms(q string, loc i18n.Locale) []analysis.Term
	ResolveLocale(requested i18n.Locale, q string) (i18n.Locale, error)
	Synonym(word string) (canonical string, group []string, ok bool)
}

// HistoryStore records executed searches per user.
type HistoryStore interface {
	Append(e domhistory.Entry)
	Queries() []string
}

// AnalyticsRecorder aggregates executed searches.
type AnalyticsRecorder interface {
	Record(s domanalytics.Sample)
}
