// Package schema defines the per-document-type index schema.
package schema

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
)

var typeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// MaxFields is the maximum number of fields per schema.
const MaxFields = 128

// Schema is the document type schema (immutable value object).
type Schema struct {
	docType      string
	fields       []field.Descriptor
	byName       map[string]int
	defaultBoost float64
	locale       i18n.Locale
}

// New validates and creates a Schema.
// Type: ^[A-Za-z0-9_-]+$, 1-64 chars. Fields: at least one, unique names.
func New(docType string, fields []field.Descriptor, defaultBoost float64, locale i18n.Locale) (Schema, error) {
	if docType == "" {
		return Schema{}, fmt.Errorf("document type is required")
	}
	if len(docType) > 64 {
		return Schema{}, fmt.Errorf("document type too long (max 64)")
	}
	if !typeRegex.MatchString(docType) {
		return Schema{}, fmt.Errorf("document type must be alphanumeric with underscores and hyphens")
	}
	if len(fields) == 0 {
		return Schema{}, fmt.Errorf("schema %s: at least one field is required", docType)
	}
	if len(fields) > MaxFields {
		return Schema{}, fmt.Errorf("schema %s: too many fields (max %d)", docType, MaxFields)
	}
	if defaultBoost < 0 {
		return Schema{}, fmt.Errorf("schema %s: default boost must be >= 0", docType)
	}

	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := byName[f.Name()]; dup {
			return Schema{}, fmt.Errorf("schema %s: duplicate field name: %s", docType, f.Name())
		}
		byName[f.Name()] = i
	}

	if locale == "" || locale == i18n.Auto {
		locale = i18n.EN
	}

	return Schema{
		docType:      docType,
		fields:       append([]field.Descriptor(nil), fields...),
		byName:       byName,
		defaultBoost: defaultBoost,
		locale:       locale,
	}, nil
}

// Type returns the document type name.
func (s Schema) Type() string { return s.docType }

// Fields returns the field descriptors in declaration order.
func (s Schema) Fields() []field.Descriptor { return s.fields }

// DefaultBoost returns the schema-wide score multiplier.
func (s Schema) DefaultBoost() float64 { return s.defaultBoost }

// Locale returns the analyzer hint.
func (s Schema) Locale() i18n.Locale { return s.locale }

// Field looks up a field by name.
func (s Schema) Field(name string) (field.Descriptor, bool) {
	i, ok := s.byName[name]
	if !ok {
		return field.Descriptor{}, false
	}
	return s.fields[i], true
}

// FieldsWith returns the fields carrying capability c, in declaration order.
func (s Schema) FieldsWith(c field.Capability) []field.Descriptor {
	var out []field.Descriptor
	for _, f := range s.fields {
		if f.Has(c) {
			out = append(out, f)
		}
	}
	return out
}

// Searchable returns the searchable fields.
func (s Schema) Searchable() []field.Descriptor { return s.FieldsWith(field.Searchable) }

// Filterable returns the filterable fields.
func (s Schema) Filterable() []field.Descriptor { return s.FieldsWith(field.Filterable) }

// Sortable returns the sortable fields.
func (s Schema) Sortable() []field.Descriptor { return s.FieldsWith(field.Sortable) }

// Facetable returns the facetable fields.
func (s Schema) Facetable() []field.Descriptor { return s.FieldsWith(field.Facetable) }

// HasCapability reports whether the named field exists and carries c.
func (s Schema) HasCapability(name string, c field.Capability) bool {
	f, ok := s.Field(name)
	return ok && f.Has(c)
}
