// Package suggestion defines autocomplete suggestions.
package suggestion

// Source tells where a suggestion came from.
type Source string

// Source constants.
const (
	SourceQuery      Source = "QUERY"
	SourceFieldValue Source = "FIELD_VALUE"
)

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Text        string
	Highlighted string
	Score       float64
	Source      Source
	Type        string // document type, field-value suggestions only
	Field       string // field name, field-value suggestions only
}
