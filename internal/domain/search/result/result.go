package result

import (
	"time"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
)

// Hit is a single search hit. It carries the original field map, never the
// internal text blob.
type Hit struct {
	id         string
	docType    string
	tenant     string
	score      float64
	fields     map[string]any
	highlights map[string]string
	indexedAt  time.Time
}

// NewHit creates a search hit.
func NewHit(
	id, docType, tenant string, score float64,
	fields map[string]any, highlights map[string]string, indexedAt time.Time,
) Hit {
	return Hit{
		id: id, docType: docType, tenant: tenant, score: score,
		fields: fields, highlights: highlights, indexedAt: indexedAt,
	}
}

// ID returns the document identifier.
func (h Hit) ID() string { return h.id }

// Type returns the document type.
func (h Hit) Type() string { return h.docType }

// Tenant returns the owning tenant.
func (h Hit) Tenant() string { return h.tenant }

// Score returns the relevance score.
func (h Hit) Score() float64 { return h.score }

// Fields returns the original field map.
func (h Hit) Fields() map[string]any { return h.fields }

// Highlights returns highlighted fragments per field, nil when not requested.
func (h Hit) Highlights() map[string]string { return h.highlights }

// IndexedAt returns when the document was last indexed.
func (h Hit) IndexedAt() time.Time { return h.indexedAt }

// FacetValue is one distinct value and its count.
type FacetValue struct {
	Value string
	Count int
}

// Facet is the grouped count of a field over the post-filter result set.
type Facet struct {
	field  string
	labels i18n.Labels
	values []FacetValue
}

// NewFacet creates a facet.
func NewFacet(field string, labels i18n.Labels, values []FacetValue) Facet {
	return Facet{field: field, labels: labels, values: values}
}

// Field returns the faceted field name.
func (f Facet) Field() string { return f.field }

// Labels returns the field's localized labels.
func (f Facet) Labels() i18n.Labels { return f.labels }

// Values returns values ordered by count descending, then value ascending.
func (f Facet) Values() []FacetValue { return f.values }

// Page is the response to a search.
type Page struct {
	Hits        []Hit
	Total       int
	Page        int
	PageSize    int
	TotalPages  int
	Facets      []Facet
	Suggestions []string
	Took        time.Duration
	Locale      i18n.Locale
}
