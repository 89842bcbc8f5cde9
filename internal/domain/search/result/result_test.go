package result

import (
	"testing"
	"time"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
)

func TestNewHit(t *testing.T) {
	at := time.Now()
	h := NewHit("doc-1", "INVOICE", "t1", 12.5,
		map[string]any{"number": "INV-1"}, map[string]string{"number": "<em>INV</em>-1"}, at)

	if h.ID() != "doc-1" || h.Type() != "INVOICE" || h.Tenant() != "t1" {
		t.Errorf("identity = %q/%q/%q", h.ID(), h.Type(), h.Tenant())
	}
	if h.Score() != 12.5 {
		t.Errorf("Score() = %f", h.Score())
	}
	if h.Fields()["number"] != "INV-1" {
		t.Errorf("Fields() = %v", h.Fields())
	}
	if h.Highlights()["number"] != "<em>INV</em>-1" {
		t.Errorf("Highlights() = %v", h.Highlights())
	}
	if !h.IndexedAt().Equal(at) {
		t.Errorf("IndexedAt() = %v", h.IndexedAt())
	}
}

func TestNewFacet(t *testing.T) {
	f := NewFacet("status", i18n.Labels{i18n.EN: "Status", i18n.RO: "Stare"},
		[]FacetValue{{Value: "PAID", Count: 2}})
	if f.Field() != "status" || f.Labels().Get(i18n.RO) != "Stare" {
		t.Errorf("unexpected facet %+v", f)
	}
	if len(f.Values()) != 1 || f.Values()[0].Count != 2 {
		t.Errorf("Values() = %v", f.Values())
	}
}
