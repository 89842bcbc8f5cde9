package field

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// MinLabelLocales is the number of locales every field label must cover.
const MinLabelLocales = 2

// Type is the declared value type of a field.
type Type string

// Field type constants.
const (
	Text    Type = "text"
	Keyword Type = "keyword"
	Number  Type = "number"
	Date    Type = "date"
	Boolean Type = "boolean"
)

// IsValid checks if the field type is supported.
func (t Type) IsValid() bool {
	switch t {
	case Text, Keyword, Number, Date, Boolean:
		return true
	}
	return false
}

// Kind maps the declared type to its value tag.
func (t Type) Kind() value.Kind {
	switch t {
	case Number:
		return value.KindNumber
	case Date:
		return value.KindDate
	case Boolean:
		return value.KindBool
	default:
		return value.KindText
	}
}

// IsTextual reports whether values of this type are strings.
func (t Type) IsTextual() bool { return t == Text || t == Keyword }

// Capability is a bit set of what a field participates in.
type Capability uint8

// Capability flags.
const (
	Searchable Capability = 1 << iota
	Filterable
	Sortable
	Facetable
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{Searchable, "searchable"},
	{Filterable, "filterable"},
	{Sortable, "sortable"},
	{Facetable, "facetable"},
}

// ParseCapability parses a single capability name.
func ParseCapability(s string) (Capability, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, cn := range capabilityNames {
		if cn.name == s {
			return cn.c, nil
		}
	}
	return 0, fmt.Errorf("unknown field capability %q", s)
}

func (c Capability) String() string {
	var parts []string
	for _, cn := range capabilityNames {
		if c&cn.c != 0 {
			parts = append(parts, cn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Markup declares that a text field holds markup to be stripped before indexing.
type Markup string

// Markup kinds.
const (
	MarkupNone Markup = ""
	MarkupHTML Markup = "html"
)

// Params collects the inputs of New.
type Params struct {
	Name         string
	Labels       map[string]string
	Type         Type
	Capabilities Capability
	Boost        *float64 // nil means 1.0
	Enum         []string
	Required     bool
	Markup       Markup
}

// Descriptor is an immutable value object describing one schema field.
type Descriptor struct {
	name      string
	labels    i18n.Labels
	fieldType Type
	caps      Capability
	boost     float64
	enum      []string
	required  bool
	markup    Markup
}

// New validates and creates a Descriptor.
func New(p Params) (Descriptor, error) {
	if p.Name == "" {
		return Descriptor{}, fmt.Errorf("field name is required")
	}
	if len(p.Name) > 64 {
		return Descriptor{}, fmt.Errorf("field name %q too long (max 64)", p.Name)
	}
	if !nameRegex.MatchString(p.Name) {
		return Descriptor{}, fmt.Errorf("field name %q must start with a letter or underscore", p.Name)
	}
	if !p.Type.IsValid() {
		return Descriptor{}, fmt.Errorf("invalid field type %q for %q", p.Type, p.Name)
	}
	labels, err := i18n.NewLabels(p.Labels, MinLabelLocales)
	if err != nil {
		return Descriptor{}, fmt.Errorf("field %q: %w", p.Name, err)
	}

	boost := 1.0
	if p.Boost != nil {
		if *p.Boost < 0 {
			return Descriptor{}, fmt.Errorf("field %q: boost must be >= 0", p.Name)
		}
		boost = *p.Boost
	}
	if len(p.Enum) > 0 && !p.Type.IsTextual() {
		return Descriptor{}, fmt.Errorf("field %q: enum values require a text or keyword type", p.Name)
	}
	switch p.Markup {
	case MarkupNone:
	case MarkupHTML:
		if p.Type != Text {
			return Descriptor{}, fmt.Errorf("field %q: markup requires type text", p.Name)
		}
	default:
		return Descriptor{}, fmt.Errorf("field %q: unknown markup %q", p.Name, p.Markup)
	}

	return Descriptor{
		name:      p.Name,
		labels:    labels,
		fieldType: p.Type,
		caps:      p.Capabilities,
		boost:     boost,
		enum:      slices.Clone(p.Enum),
		required:  p.Required,
		markup:    p.Markup,
	}, nil
}

// Name returns the field name.
func (d Descriptor) Name() string { return d.name }

// Labels returns the localized display labels.
func (d Descriptor) Labels() i18n.Labels { return d.labels }

// Type returns the declared value type.
func (d Descriptor) Type() Type { return d.fieldType }

// Capabilities returns the capability bit set.
func (d Descriptor) Capabilities() Capability { return d.caps }

// Has reports whether the field carries capability c.
func (d Descriptor) Has(c Capability) bool { return d.caps&c == c }

// Boost returns the per-field score multiplier.
func (d Descriptor) Boost() float64 { return d.boost }

// Enum returns the allowed values, empty when unrestricted.
func (d Descriptor) Enum() []string { return d.enum }

// Required reports whether documents must carry a non-null value.
func (d Descriptor) Required() bool { return d.required }

// Markup returns the markup kind of the field.
func (d Descriptor) Markup() Markup { return d.markup }

// Coerce converts a raw document value into a typed value for this field.
func (d Descriptor) Coerce(raw any) (value.Value, error) {
	v, err := value.Parse(raw, d.fieldType.Kind())
	if err != nil {
		return value.Value{}, err
	}
	if len(d.enum) > 0 && !v.IsNull() && !slices.Contains(d.enum, v.Text()) {
		return value.Value{}, fmt.Errorf("%q is not one of %s", v.Text(), strings.Join(d.enum, ", "))
	}
	return v, nil
}
