// Package catalog loads index schemas from YAML and maps them to and from
// the domain model.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
)

//go:embed schemas.yaml
var defaultCatalog []byte

// File is the top-level catalog document.
type File struct {
	Schemas []Schema `yaml:"schemas" json:"schemas"`
}

// Schema is the serializable form of a schema.
type Schema struct {
	Type         string   `yaml:"type" json:"type"`
	Locale       string   `yaml:"locale,omitempty" json:"locale,omitempty"`
	DefaultBoost *float64 `yaml:"default_boost,omitempty" json:"defaultBoost,omitempty"`
	Fields       []Field  `yaml:"fields" json:"fields"`
}

// Field is the serializable form of a field descriptor.
type Field struct {
	Name         string            `yaml:"name" json:"name"`
	Type         string            `yaml:"type" json:"type"`
	Labels       map[string]string `yaml:"labels" json:"labels"`
	Capabilities []string          `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Boost        *float64          `yaml:"boost,omitempty" json:"boost,omitempty"`
	Enum         []string          `yaml:"enum,omitempty" json:"enum,omitempty"`
	Required     bool              `yaml:"required,omitempty" json:"required,omitempty"`
	Markup       string            `yaml:"markup,omitempty" json:"markup,omitempty"`
}

// Default returns the embedded business catalog.
func Default() ([]schema.Schema, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file from disk.
func Load(path string) ([]schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML into validated schemas.
func Parse(data []byte) ([]schema.Schema, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Schemas) == 0 {
		return nil, fmt.Errorf("parse catalog: no schemas declared")
	}
	out := make([]schema.Schema, 0, len(f.Schemas))
	seen := make(map[string]struct{}, len(f.Schemas))
	for _, s := range f.Schemas {
		if _, dup := seen[s.Type]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate schema %q", s.Type)
		}
		seen[s.Type] = struct{}{}
		ds, err := s.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		out = append(out, ds)
	}
	return out, nil
}

// ToDomain validates the DTO and converts it.
func (s Schema) ToDomain() (schema.Schema, error) {
	fields := make([]field.Descriptor, 0, len(s.Fields))
	for _, f := range s.Fields {
		d, err := f.ToDomain()
		if err != nil {
			return schema.Schema{}, fmt.Errorf("schema %s: %w", s.Type, err)
		}
		fields = append(fields, d)
	}
	boost := 1.0
	if s.DefaultBoost != nil {
		boost = *s.DefaultBoost
	}
	return schema.New(s.Type, fields, boost, i18n.ParseLocale(s.Locale))
}

// ToDomain validates the DTO and converts it.
func (f Field) ToDomain() (field.Descriptor, error) {
	var caps field.Capability
	for _, name := range f.Capabilities {
		c, err := field.ParseCapability(name)
		if err != nil {
			return field.Descriptor{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		caps |= c
	}
	return field.New(field.Params{
		Name:         f.Name,
		Labels:       f.Labels,
		Type:         field.Type(f.Type),
		Capabilities: caps,
		Boost:        f.Boost,
		Enum:         f.Enum,
		Required:     f.Required,
		Markup:       field.Markup(f.Markup),
	})
}

// FromDomain converts a schema to its serializable form.
func FromDomain(s schema.Schema) Schema {
	boost := s.DefaultBoost()
	out := Schema{
		Type:         s.Type(),
		Locale:       string(s.Locale()),
		DefaultBoost: &boost,
		Fields:       make([]Field, 0, len(s.Fields())),
	}
	for _, d := range s.Fields() {
		out.Fields = append(out.Fields, FieldFromDomain(d))
	}
	return out
}

// FieldFromDomain converts a field descriptor to its serializable form.
func FieldFromDomain(d field.Descriptor) Field {
	boost := d.Boost()
	var caps []string
	for _, c := range []field.Capability{field.Searchable, field.Filterable, field.Sortable, field.Facetable} {
		if d.Has(c) {
			caps = append(caps, c.String())
		}
	}
	return Field{
		Name:         d.Name(),
		Type:         string(d.Type()),
		Labels:       d.Labels().Map(),
		Capabilities: caps,
		Boost:        &boost,
		Enum:         d.Enum(),
		Required:     d.Required(),
		Markup:       string(d.Markup()),
	}
}
