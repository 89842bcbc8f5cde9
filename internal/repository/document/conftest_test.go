package document

import (
	"testing"
	"time"

	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testDocument(t *testing.T, id, tenant, docType, title string) domdoc.Document {
	t.Helper()
	return domdoc.New(domdoc.Params{
		ID:        id,
		Type:      docType,
		Tenant:    tenant,
		Raw:       map[string]any{"title": title},
		Values:    map[string]value.Value{"title": value.Text(title)},
		Locale:    i18n.EN,
		Derived:   domdoc.Derived{Blob: title},
		CreatedAt: testTime,
		UpdatedAt: testTime,
		IndexedAt: testTime,
	})
}

func newTestStore(t *testing.T, docs ...domdoc.Document) *Store {
	t.Helper()
	s := New()
	for _, d := range docs {
		if err := s.Put(d); err != nil {
			t.Fatalf("Put(%s): %v", d.ID(), err)
		}
	}
	return s
}
