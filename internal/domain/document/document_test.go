package document

import (
	"testing"
	"time"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

func makeDoc() Document {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return New(Params{
		ID:     "d1",
		Type:   "INVOICE",
		Tenant: "t1",
		Raw:    map[string]any{"number": "INV-1", "amount": 5000, "memo": nil},
		Values: map[string]value.Value{
			"number": value.Text("INV-1"),
			"amount": value.Number(5000),
			"memo":   value.Null(),
		},
		Locale:    i18n.RO,
		Derived:   Derived{Blob: "inv-1", Text: map[string]string{"number": "inv-1"}},
		CreatedAt: now, UpdatedAt: now, IndexedAt: now,
	})
}

func TestFields_ReturnsCopy(t *testing.T) {
	d := makeDoc()
	f := d.Fields()
	f["number"] = "changed"
	if d.Fields()["number"] != "INV-1" {
		t.Error("Fields() must return a copy")
	}
}

func TestValue_NullIsAbsent(t *testing.T) {
	d := makeDoc()
	if _, ok := d.Value("memo"); ok {
		t.Error("null value should report absent")
	}
	if _, ok := d.Value("missing"); ok {
		t.Error("missing value should report absent")
	}
	v, ok := d.Value("amount")
	if !ok || v.Number() != 5000 {
		t.Errorf("amount = %v, %v", v, ok)
	}
}

func TestWithContent_IsCopy(t *testing.T) {
	d := makeDoc()
	later := d.CreatedAt().Add(time.Hour)
	n := d.WithContent(map[string]any{"number": "INV-2"},
		map[string]value.Value{"number": value.Text("INV-2")},
		Derived{Blob: "inv-2"}, later)

	if d.Blob() != "inv-1" {
		t.Error("original document mutated")
	}
	if n.Blob() != "inv-2" || !n.UpdatedAt().Equal(later) || !n.CreatedAt().Equal(d.CreatedAt()) {
		t.Errorf("unexpected copy state: blob=%q updated=%v", n.Blob(), n.UpdatedAt())
	}
}

func TestWithDerived_KeepsContent(t *testing.T) {
	d := makeDoc()
	later := d.CreatedAt().Add(time.Minute)
	n := d.WithDerived(d.Values(), Derived{Blob: "rebuilt"}, later)
	if n.Fields()["number"] != "INV-1" {
		t.Error("content must not change on reindex")
	}
	if !n.UpdatedAt().Equal(d.UpdatedAt()) {
		t.Error("updatedAt must not change on reindex")
	}
	if !n.IndexedAt().Equal(later) {
		t.Error("indexedAt must advance on reindex")
	}
}
