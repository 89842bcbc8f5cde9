package suggest

import (
	"context"
	"fmt"
	"testing"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/catalog"
	"github.com/kailas-cloud/recordex/internal/domain/search/suggestion"
	docrepo "github.com/kailas-cloud/recordex/internal/repository/document"
	schemarepo "github.com/kailas-cloud/recordex/internal/repository/schema"
	"github.com/kailas-cloud/recordex/internal/usecase/indexing"
)

// --- Mocks ---

type mockQueryLog struct {
	freq map[string]int
}

func (m *mockQueryLog) Frequencies() map[string]int { return m.freq }

// --- Helpers ---

func setup(t *testing.T, log QueryLog) (*Service, *indexing.Service) {
	t.Helper()
	schemas, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	registry := schemarepo.New(schemas...)
	store := docrepo.New()
	return New(store, registry, log), indexing.New(store, registry, analysis.Default())
}

func index(t *testing.T, idx *indexing.Service, docType, tenant string, fields map[string]any) {
	t.Helper()
	if _, err := idx.Index(context.Background(), indexing.Input{Type: docType, Tenant: tenant, Fields: fields}); err != nil {
		t.Fatalf("index: %v", err)
	}
}

func texts(list []suggestion.Suggestion) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Text
	}
	return out
}

// --- Tests ---

func TestSuggest_EmptyPrefixOrUnknownType(t *testing.T) {
	svc, idx := setup(t, nil)
	index(t, idx, "CLIENT", "t1", map[string]any{"name": "Acme"})

	if got := svc.Suggest(context.Background(), Request{Prefix: "  "}); got == nil || len(got) != 0 {
		t.Errorf("empty prefix: got %v, want empty list", got)
	}
	if got := svc.Suggest(context.Background(), Request{Prefix: "ac", Type: "NOPE"}); got == nil || len(got) != 0 {
		t.Errorf("unknown type: got %v, want empty list", got)
	}
}

func TestSuggest_FieldValues(t *testing.T) {
	svc, idx := setup(t, nil)
	index(t, idx, "CLIENT", "t1", map[string]any{"name": "Acme SRL", "city": "Cluj"})
	index(t, idx, "INVOICE", "t1", map[string]any{"number": "INV-1", "clientName": "Acme SRL"})
	index(t, idx, "CLIENT", "t1", map[string]any{"name": "Grup Acme"})

	got := svc.Suggest(context.Background(), Request{Prefix: "ACM"})
	if len(got) != 2 {
		t.Fatalf("got %v", texts(got))
	}
	if got[0].Text != "Acme SRL" || got[0].Score != 4 || got[0].Source != suggestion.SourceFieldValue {
		t.Errorf("first = %+v, want summed prefix score 4", got[0])
	}
	if got[0].Highlighted != "<mark>Acm</mark>e SRL" {
		t.Errorf("highlighted = %q", got[0].Highlighted)
	}
	if got[1].Text != "Grup Acme" || got[1].Score != scoreWordPrefix {
		t.Errorf("second = %+v", got[1])
	}
	if got[1].Highlighted != "Grup <mark>Acm</mark>e" {
		t.Errorf("highlighted = %q", got[1].Highlighted)
	}
}

func TestSuggest_QueryLogWinsDedupe(t *testing.T) {
	log := &mockQueryLog{freq: map[string]int{"acme srl": 10, "globex": 5, "acme": 1}}
	svc, idx := setup(t, log)
	index(t, idx, "CLIENT", "t1", map[string]any{"name": "Acme SRL"})

	got := svc.Suggest(context.Background(), Request{Prefix: "acme"})
	want := []string{"acme srl", "acme"}
	if fmt.Sprint(texts(got)) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", texts(got), want)
	}
	if got[0].Source != suggestion.SourceQuery || got[0].Score != 10 {
		t.Errorf("first = %+v", got[0])
	}
}

func TestSuggest_TypeAndTenantScope(t *testing.T) {
	svc, idx := setup(t, nil)
	index(t, idx, "CLIENT", "t1", map[string]any{"name": "Acme SRL"})
	index(t, idx, "PRODUCT", "t1", map[string]any{"name": "Acme Widget"})
	index(t, idx, "CLIENT", "t2", map[string]any{"name": "Acmeville"})

	if got := svc.Suggest(context.Background(), Request{Prefix: "acme", Type: "PRODUCT"}); len(got) != 1 || got[0].Text != "Acme Widget" {
		t.Errorf("type scope: %v", texts(got))
	}
	got := svc.Suggest(context.Background(), Request{Prefix: "acme", Tenant: "t1"})
	for _, s := range got {
		if s.Text == "Acmeville" {
			t.Errorf("tenant scope leaked: %v", texts(got))
		}
	}
	if len(got) != 2 {
		t.Errorf("tenant scope: %v", texts(got))
	}
}

func TestSuggest_Fuzzy(t *testing.T) {
	svc, idx := setup(t, nil)
	index(t, idx, "CLIENT", "t1", map[string]any{"name": "Exemplu"})

	if got := svc.Suggest(context.Background(), Request{Prefix: "exm"}); len(got) != 0 {
		t.Errorf("fuzzy off: %v", texts(got))
	}
	got := svc.Suggest(context.Background(), Request{Prefix: "exm", Fuzzy: true})
	if len(got) != 1 || got[0].Score != scoreFuzzy {
		t.Fatalf("fuzzy on: %+v", got)
	}
	if got[0].Highlighted != "Exemplu" {
		t.Errorf("fuzzy matches carry no mark, got %q", got[0].Highlighted)
	}
}

func TestSuggest_Limit(t *testing.T) {
	svc, idx := setup(t, nil)
	for i := range 15 {
		index(t, idx, "CLIENT", "t1", map[string]any{"name": fmt.Sprintf("Acme %02d", i)})
	}
	if got := svc.Suggest(context.Background(), Request{Prefix: "acme"}); len(got) != DefaultLimit {
		t.Errorf("default limit: %d", len(got))
	}
	got := svc.Suggest(context.Background(), Request{Prefix: "acme", Limit: 3})
	want := []string{"Acme 00", "Acme 01", "Acme 02"}
	if fmt.Sprint(texts(got)) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", texts(got), want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"factură", 6, "factur"},
		{"factură", 7, "factură"},
		{"ab", 5, "ab"},
		{"ăîș", 2, "ăî"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
