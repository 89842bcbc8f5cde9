package indexing

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/domain"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

// Derive validates raw against s and builds the typed values and derived
// index state. It is a pure function of (schema, fields).
func Derive(s domschema.Schema, raw map[string]any) (map[string]value.Value, domdoc.Derived, error) {
	values := make(map[string]value.Value, len(raw))
	derived := domdoc.Derived{
		Text:   make(map[string]string, len(raw)),
		Tokens: make(map[string][]string, len(raw)),
	}

	for _, f := range s.Fields() {
		v, err := f.Coerce(raw[f.Name()])
		if err != nil {
			return nil, domdoc.Derived{}, domain.NewValidationError(f.Name(), err.Error())
		}
		if v.IsNull() {
			if f.Required() {
				return nil, domdoc.Derived{}, domain.NewValidationError(f.Name(), "is required")
			}
			continue
		}
		values[f.Name()] = v
		addText(&derived, f.Name(), v, f.Markup())
	}

	for name, r := range raw {
		if _, known := s.Field(name); known {
			continue
		}
		v := value.Infer(r)
		if v.IsNull() {
			continue
		}
		values[name] = v
		addText(&derived, name, v, field.MarkupNone)
	}

	var blob []string
	for _, f := range s.Searchable() {
		if t, ok := derived.Text[f.Name()]; ok && t != "" {
			blob = append(blob, t)
		}
	}
	derived.Blob = strings.Join(blob, " ")
	return values, derived, nil
}

func addText(d *domdoc.Derived, name string, v value.Value, markup field.Markup) {
	text := v.String()
	if markup == field.MarkupHTML {
		text = analysis.StripMarkup(text)
	}
	text = analysis.Fold(text)
	d.Text[name] = text
	d.Tokens[name] = analysis.UniqueTokens(text)
}

// searchableText joins the original searchable values for locale detection.
func searchableText(s domschema.Schema, values map[string]value.Value) string {
	var parts []string
	for _, f := range s.Searchable() {
		if v, ok := values[f.Name()]; ok {
			parts = append(parts, v.String())
		}
	}
	return strings.Join(parts, " ")
}

func invalidType(docType string) error {
	return fmt.Errorf("document type %q: %w", docType, domain.ErrInvalidType)
}
