package document

import (
	"maps"
	"time"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

// Derived is the index state computed from a document's fields and schema.
// It is always rebuilt from scratch, never patched.
type Derived struct {
	// Blob joins the lowercased searchable field values in schema order.
	Blob string
	// Text holds the lowercased text of every non-null field.
	Text map[string]string
	// Tokens holds the analyzer tokens of every non-null field.
	Tokens map[string][]string
}

// Params collects the inputs of New.
type Params struct {
	ID        string
	Type      string
	Tenant    string
	Raw       map[string]any
	Values    map[string]value.Value
	Locale    i18n.Locale
	Derived   Derived
	CreatedAt time.Time
	UpdatedAt time.Time
	IndexedAt time.Time
}

// Document is an indexed document (immutable value object).
// Mutations build a new Document that the store swaps in atomically.
type Document struct {
	id        string
	docType   string
	tenant    string
	raw       map[string]any
	values    map[string]value.Value
	locale    i18n.Locale
	derived   Derived
	createdAt time.Time
	updatedAt time.Time
	indexedAt time.Time
}

// New creates a Document. Validation against the schema happens in the indexer.
func New(p Params) Document {
	return Document{
		id:        p.ID,
		docType:   p.Type,
		tenant:    p.Tenant,
		raw:       maps.Clone(p.Raw),
		values:    maps.Clone(p.Values),
		locale:    p.Locale,
		derived:   p.Derived,
		createdAt: p.CreatedAt,
		updatedAt: p.UpdatedAt,
		indexedAt: p.IndexedAt,
	}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Type returns the document type.
func (d Document) Type() string { return d.docType }

// Tenant returns the owning tenant.
func (d Document) Tenant() string { return d.tenant }

// Fields returns a copy of the original field map.
func (d Document) Fields() map[string]any { return maps.Clone(d.raw) }

// Value returns the typed value of a field. Missing fields report false.
func (d Document) Value(name string) (value.Value, bool) {
	v, ok := d.values[name]
	if !ok || v.IsNull() {
		return value.Value{}, false
	}
	return v, true
}

// Values returns the typed field values. Callers must not modify the map.
func (d Document) Values() map[string]value.Value { return d.values }

// Locale returns the document locale.
func (d Document) Locale() i18n.Locale { return d.locale }

// Blob returns the derived lowercase text blob.
func (d Document) Blob() string { return d.derived.Blob }

// FieldText returns the lowercased text of a field, empty when absent.
func (d Document) FieldText(name string) string { return d.derived.Text[name] }

// Tokens returns the analyzer tokens of a field.
func (d Document) Tokens(name string) []string { return d.derived.Tokens[name] }

// Derived returns the full derived index state.
func (d Document) Derived() Derived { return d.derived }

// CreatedAt returns the creation time.
func (d Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last content mutation time.
func (d Document) UpdatedAt() time.Time { return d.updatedAt }

// IndexedAt returns the last time the derived state was rebuilt.
func (d Document) IndexedAt() time.Time { return d.indexedAt }

// WithContent returns a copy with new content and derived state.
func (d Document) WithContent(raw map[string]any, values map[string]value.Value, derived Derived, now time.Time) Document {
	c := d
	c.raw = maps.Clone(raw)
	c.values = maps.Clone(values)
	c.derived = derived
	c.updatedAt = now
	c.indexedAt = now
	return c
}

// WithDerived returns a copy with rebuilt typed values and derived state; content is unchanged.
func (d Document) WithDerived(values map[string]value.Value, derived Derived, now time.Time) Document {
	c := d
	c.values = maps.Clone(values)
	c.derived = derived
	c.indexedAt = now
	return c
}

// Stats summarizes the document store.
type Stats struct {
	Total  int
	ByType map[string]int
}
