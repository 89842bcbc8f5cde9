package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/engine"
)

// --- Mocks ---

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

// --- Helpers ---

func newTestEngine(t *testing.T, opts engine.Options) *engine.Engine {
	t.Helper()
	if opts.Clock == nil {
		fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		opts.Clock = func() time.Time { return fixed }
	}
	eng, err := engine.New(opts)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return eng
}

func servicesOf(e *engine.Engine) Services {
	return Services{
		Indexing:  e.Indexing,
		Search:    e.Search,
		Suggest:   e.Suggest,
		Saved:     e.Saved,
		History:   e.HistoryLog,
		Analytics: e.Analytics,
		Schemas:   e.SchemaAdmin,
		Health:    e.Health,
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(servicesOf(newTestEngine(t, engine.Options{})), nil).Router(RouterConfig{})
}

type call struct {
	method string
	path   string
	body   any
	user   string
	tenant string
}

func do(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	switch b := c.body.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set(HeaderUserID, c.user)
	}
	if c.tenant != "" {
		req.Header.Set(HeaderTenantID, c.tenant)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func indexDoc(t *testing.T, h http.Handler, tenant, docType string, fields map[string]any) DocumentResponse {
	t.Helper()
	rr := do(t, h, call{method: "POST", path: "/documents", tenant: tenant, body: DocumentRequest{Type: docType, Fields: fields}})
	expectStatus(t, rr, http.StatusCreated)
	return decode[DocumentResponse](t, rr)
}

// --- Tests ---

func TestIndexAndGetDocument(t *testing.T) {
	h := newTestRouter(t)
	doc := indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme Corp", "city": "Cluj"})
	if doc.ID == "" || doc.TenantID != "t1" || doc.Type != "CLIENT" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Locale != "ro" {
		t.Errorf("locale: got %q, want schema locale ro", doc.Locale)
	}

	rr := do(t, h, call{method: "GET", path: "/documents/" + doc.ID})
	expectStatus(t, rr, http.StatusOK)
	got := decode[DocumentResponse](t, rr)
	if got.Fields["name"] != "Acme Corp" || got.Fields["city"] != "Cluj" {
		t.Errorf("fields not round-tripped: %v", got.Fields)
	}
}

func TestIndexDocument_BodyTenantWins(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, call{method: "POST", path: "/documents", tenant: "header", body: DocumentRequest{
		Type: "CLIENT", TenantID: "body", Fields: map[string]any{"name": "Acme"},
	}})
	expectStatus(t, rr, http.StatusCreated)
	if got := decode[DocumentResponse](t, rr); got.TenantID != "body" {
		t.Errorf("tenant: got %q, want body", got.TenantID)
	}
}

func TestIndexDocument_Errors(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		name   string
		req    DocumentRequest
		tenant string
		status int
		code   ErrorCode
		field  string
	}{
		{"unknown type", DocumentRequest{Type: "NOPE", Fields: map[string]any{"x": 1}}, "t1",
			http.StatusBadRequest, CodeInvalidType, ""},
		{"missing required", DocumentRequest{Type: "CLIENT", Fields: map[string]any{"city": "Cluj"}}, "t1",
			http.StatusBadRequest, CodeValidationFailed, "name"},
		{"enum violation", DocumentRequest{Type: "INVOICE", Fields: map[string]any{"number": "1", "status": "LOST"}}, "t1",
			http.StatusBadRequest, CodeValidationFailed, "status"},
		{"type mismatch", DocumentRequest{Type: "INVOICE", Fields: map[string]any{"number": "1", "amount": "lots"}}, "t1",
			http.StatusBadRequest, CodeValidationFailed, "amount"},
		{"missing tenant", DocumentRequest{Type: "CLIENT", Fields: map[string]any{"name": "Acme"}}, "",
			http.StatusBadRequest, CodeValidationFailed, "tenantId"},
		{"unknown locale", DocumentRequest{Type: "CLIENT", Locale: "xx", Fields: map[string]any{"name": "Acme"}}, "t1",
			http.StatusBadRequest, CodeValidationFailed, "locale"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, call{method: "POST", path: "/documents", tenant: tc.tenant, body: tc.req})
			expectStatus(t, rr, tc.status)
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tc.code {
				t.Errorf("code: got %q, want %q", resp.Code, tc.code)
			}
			if resp.Field != tc.field {
				t.Errorf("field: got %q, want %q", resp.Field, tc.field)
			}
		})
	}
}

func TestIndexDocument_BadJSON(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, call{method: "POST", path: "/documents", body: "{not json"})
	expectStatus(t, rr, http.StatusBadRequest)
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeBadRequest {
		t.Errorf("code: got %q", resp.Code)
	}
}

func TestUpdateDocument(t *testing.T) {
	h := newTestRouter(t)
	doc := indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme", "city": "Cluj"})

	rr := do(t, h, call{method: "PATCH", path: "/documents/" + doc.ID, body: `{"fields":{"name":"Acme Prime","city":null}}`})
	expectStatus(t, rr, http.StatusOK)
	got := decode[DocumentResponse](t, rr)
	if got.Fields["name"] != "Acme Prime" {
		t.Errorf("name not replaced: %v", got.Fields)
	}
	if _, ok := got.Fields["city"]; ok {
		t.Errorf("null did not remove city: %v", got.Fields)
	}

	rr = do(t, h, call{method: "PATCH", path: "/documents/" + doc.ID, body: `{"fields":{"name":null}}`})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = do(t, h, call{method: "PATCH", path: "/documents/" + doc.ID, body: `{"fields":{}}`})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = do(t, h, call{method: "PATCH", path: "/documents/missing", body: `{"fields":{"name":"x"}}`})
	expectStatus(t, rr, http.StatusNotFound)
}

func TestDeleteDocument(t *testing.T) {
	h := newTestRouter(t)
	doc := indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme"})

	expectStatus(t, do(t, h, call{method: "DELETE", path: "/documents/" + doc.ID}), http.StatusNoContent)
	expectStatus(t, do(t, h, call{method: "GET", path: "/documents/" + doc.ID}), http.StatusNotFound)
	expectStatus(t, do(t, h, call{method: "DELETE", path: "/documents/" + doc.ID}), http.StatusNotFound)
}

func TestBatchIndex(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, call{method: "POST", path: "/documents/batch", tenant: "t1", body: BatchRequest{Documents: []DocumentRequest{
		{Type: "CLIENT", Fields: map[string]any{"name": "Acme"}},
		{Type: "NOPE", Fields: map[string]any{"name": "Ghost"}},
		{Type: "PRODUCT", Fields: map[string]any{"name": "Laptop", "price": 3500}},
	}}})
	expectStatus(t, rr, http.StatusOK)
	resp := decode[BatchResponse](t, rr)
	if resp.Succeeded != 2 || resp.Failed != 1 {
		t.Fatalf("counts: %+v", resp)
	}
	if resp.Items[1].Status != "error" || resp.Items[1].Error == nil || resp.Items[1].Error.Code != CodeInvalidType {
		t.Errorf("item 1: %+v", resp.Items[1])
	}
	if resp.Items[0].ID == "" || resp.Items[2].ID == "" {
		t.Error("successful items need ids")
	}

	expectStatus(t, do(t, h, call{method: "POST", path: "/documents/batch", body: BatchRequest{}}), http.StatusBadRequest)
}

func TestSearch(t *testing.T) {
	h := newTestRouter(t)
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme Corp", "city": "Cluj"})
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Globex", "city": "Iasi"})
	indexDoc(t, h, "t2", "CLIENT", map[string]any{"name": "Acme Other", "city": "Arad"})

	rr := do(t, h, call{method: "POST", path: "/search", tenant: "t1", user: "u1",
		body: map[string]any{"query": "acme", "entities": []string{"CLIENT"}, "highlight": true}})
	expectStatus(t, rr, http.StatusOK)
	resp := decode[SearchResponse](t, rr)
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("expected 1 hit in tenant t1, got %+v", resp)
	}
	hit := resp.Results[0]
	if hit.TenantID != "t1" || hit.Score <= 0 {
		t.Errorf("unexpected hit %+v", hit)
	}
	if !strings.Contains(hit.Highlights["name"], "<em>Acme</em>") {
		t.Errorf("highlight: %v", hit.Highlights)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("paging defaults: page=%d size=%d", resp.Page, resp.PageSize)
	}

	// The body tenant wins over the header.
	rr = do(t, h, call{method: "POST", path: "/search", tenant: "t1",
		body: map[string]any{"query": "acme", "tenantId": "t2"}})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[SearchResponse](t, rr); resp.Total != 1 || resp.Results[0].TenantID != "t2" {
		t.Errorf("body tenant ignored: %+v", resp)
	}
}

func TestSearch_FacetsAndFilters(t *testing.T) {
	h := newTestRouter(t)
	indexDoc(t, h, "t1", "INVOICE", map[string]any{"number": "INV-1", "status": "PAID", "amount": 100})
	indexDoc(t, h, "t1", "INVOICE", map[string]any{"number": "INV-2", "status": "PAID", "amount": 300})
	indexDoc(t, h, "t1", "INVOICE", map[string]any{"number": "INV-3", "status": "SENT", "amount": 500})

	rr := do(t, h, call{method: "POST", path: "/search", body: `{
		"query": "",
		"entities": ["INVOICE"],
		"filters": [{"field": "amount", "operator": "GREATER_THAN", "value": 150}],
		"facets": ["status"],
		"sort": [{"field": "amount", "order": "desc"}]
	}`})
	expectStatus(t, rr, http.StatusOK)
	resp := decode[SearchResponse](t, rr)
	if resp.Total != 2 {
		t.Fatalf("total: got %d, want 2", resp.Total)
	}
	if resp.Results[0].Fields["number"] != "INV-3" {
		t.Errorf("sort desc: first is %v", resp.Results[0].Fields["number"])
	}
	if len(resp.Facets) != 1 || resp.Facets[0].Field != "status" {
		t.Fatalf("facets: %+v", resp.Facets)
	}
	if resp.Facets[0].Labels["en"] == "" {
		t.Error("facet must carry labels")
	}
	counts := 0
	for _, v := range resp.Facets[0].Values {
		counts += v.Count
	}
	if counts != 2 {
		t.Errorf("facet counts sum to %d, want 2", counts)
	}
}

func TestSearch_Errors(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"bad operator", `{"query":"x","operator":"XOR"}`, CodeInvalidQuery},
		{"bad filter operand", `{"query":"","entities":["INVOICE"],"filters":[{"field":"amount","operator":"EQUALS","value":"many"}]}`, CodeInvalidQuery},
		{"unknown type", `{"query":"x","entities":["NOPE"]}`, CodeInvalidType},
		{"unknown locale", `{"query":"x","locale":"xx"}`, CodeInvalidQuery},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, call{method: "POST", path: "/search", body: tc.body})
			expectStatus(t, rr, http.StatusBadRequest)
			if resp := decode[ErrorResponse](t, rr); resp.Code != tc.code {
				t.Errorf("code: got %q, want %q (%s)", resp.Code, tc.code, resp.Message)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	h := newTestRouter(t)
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme Corp"})
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme Labs"})

	rr := do(t, h, call{method: "GET", path: "/suggest?q=acm&type=CLIENT&limit=5"})
	expectStatus(t, rr, http.StatusOK)
	resp := decode[SuggestResponse](t, rr)
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	s := resp.Suggestions[0]
	if !strings.Contains(s.Highlighted, "<mark>") || s.Source != "FIELD_VALUE" {
		t.Errorf("unexpected suggestion %+v", s)
	}

	rr = do(t, h, call{method: "GET", path: "/suggest?q="})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[SuggestResponse](t, rr); len(resp.Suggestions) != 0 {
		t.Errorf("empty prefix: got %v", resp.Suggestions)
	}

	expectStatus(t, do(t, h, call{method: "GET", path: "/suggest?q=a&limit=x"}), http.StatusBadRequest)
}

func TestSavedSearches(t *testing.T) {
	h := newTestRouter(t)
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme Corp"})
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Globex"})

	rr := do(t, h, call{method: "POST", path: "/saved-searches", user: "u1", body: map[string]any{
		"name":  map[string]string{"en": "Acme clients", "ro": "Clienți Acme"},
		"query": map[string]any{"query": "acme", "entities": []string{"CLIENT"}},
	}})
	expectStatus(t, rr, http.StatusCreated)
	saved := decode[SavedSearchResponse](t, rr)
	if saved.ID == "" || saved.UserID != "u1" || saved.Name["ro"] != "Clienți Acme" {
		t.Fatalf("unexpected saved search %+v", saved)
	}

	rr = do(t, h, call{method: "GET", path: "/saved-searches", user: "u1"})
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]SavedSearchResponse](t, rr); len(list) != 1 {
		t.Errorf("list: got %d", len(list))
	}

	// Another owner sees nothing.
	expectStatus(t, do(t, h, call{method: "GET", path: "/saved-searches/" + saved.ID, user: "u2"}), http.StatusNotFound)
	expectStatus(t, do(t, h, call{method: "DELETE", path: "/saved-searches/" + saved.ID, user: "u2"}), http.StatusNotFound)

	rr = do(t, h, call{method: "POST", path: "/saved-searches/" + saved.ID + "/execute", user: "u1"})
	expectStatus(t, rr, http.StatusOK)
	if page := decode[SearchResponse](t, rr); page.Total != 1 {
		t.Errorf("execute: total %d, want 1", page.Total)
	}

	rr = do(t, h, call{method: "POST", path: "/saved-searches/" + saved.ID + "/execute", user: "u1",
		body: map[string]any{"query": "globex"}})
	expectStatus(t, rr, http.StatusOK)
	if page := decode[SearchResponse](t, rr); page.Total != 1 || page.Results[0].Fields["name"] != "Globex" {
		t.Errorf("override not applied: %+v", page)
	}

	rr = do(t, h, call{method: "PATCH", path: "/saved-searches/" + saved.ID, user: "u1", body: map[string]any{"isDefault": true}})
	expectStatus(t, rr, http.StatusOK)
	if got := decode[SavedSearchResponse](t, rr); !got.IsDefault {
		t.Error("isDefault not applied")
	}

	expectStatus(t, do(t, h, call{method: "DELETE", path: "/saved-searches/" + saved.ID, user: "u1"}), http.StatusNoContent)
	expectStatus(t, do(t, h, call{method: "GET", path: "/saved-searches/" + saved.ID, user: "u1"}), http.StatusNotFound)
}

func TestSavedSearches_Validation(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, call{method: "POST", path: "/saved-searches", user: "u1", body: map[string]any{
		"name": map[string]string{}, "query": map[string]any{"query": "x"},
	}})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = do(t, h, call{method: "POST", path: "/saved-searches", user: "u1", body: map[string]any{
		"name": map[string]string{"en": "Only English"}, "query": map[string]any{"query": "x"},
	}})
	expectStatus(t, rr, http.StatusBadRequest)
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeValidationFailed {
		t.Errorf("single-locale name code: got %q", resp.Code)
	}

	rr = do(t, h, call{method: "POST", path: "/saved-searches", user: "u1", body: map[string]any{
		"name": map[string]string{"en": "Bad", "ro": "Rău"}, "query": map[string]any{"query": "x", "operator": "XOR"},
	}})
	expectStatus(t, rr, http.StatusBadRequest)
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeInvalidQuery {
		t.Errorf("code: got %q", resp.Code)
	}

	expectStatus(t, do(t, h, call{method: "GET", path: "/saved-searches"}), http.StatusBadRequest)
}

func TestHistory(t *testing.T) {
	h := newTestRouter(t)
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme"})

	for _, q := range []string{"acme", "globex"} {
		expectStatus(t, do(t, h, call{method: "POST", path: "/search", user: "u1", body: map[string]any{"query": q}}), http.StatusOK)
	}
	// Anonymous searches are not recorded.
	expectStatus(t, do(t, h, call{method: "POST", path: "/search", body: map[string]any{"query": "anon"}}), http.StatusOK)

	rr := do(t, h, call{method: "GET", path: "/history?limit=10", user: "u1"})
	expectStatus(t, rr, http.StatusOK)
	entries := decode[[]HistoryEntryResponse](t, rr)
	if len(entries) != 2 || entries[0].Query != "globex" {
		t.Fatalf("history newest first: %+v", entries)
	}

	rr = do(t, h, call{method: "DELETE", path: "/history", user: "u1"})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[ClearResponse](t, rr); resp.Deleted != 2 {
		t.Errorf("deleted: got %d", resp.Deleted)
	}

	expectStatus(t, do(t, h, call{method: "GET", path: "/history"}), http.StatusBadRequest)
}

func TestAnalytics(t *testing.T) {
	h := newTestRouter(t)
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme"})
	for _, q := range []string{"acme", "Acme", "nothing here"} {
		expectStatus(t, do(t, h, call{method: "POST", path: "/search", user: "u1", body: map[string]any{"query": q}}), http.StatusOK)
	}

	rr := do(t, h, call{method: "GET", path: "/analytics"})
	expectStatus(t, rr, http.StatusOK)
	resp := decode[AnalyticsResponse](t, rr)
	if resp.TotalSearches != 3 || resp.UniqueUsers != 1 {
		t.Errorf("totals: %+v", resp)
	}
	if len(resp.TopQueries) == 0 || resp.TopQueries[0].Query != "acme" || resp.TopQueries[0].Count != 2 {
		t.Errorf("top queries: %+v", resp.TopQueries)
	}
	if len(resp.ZeroResultQueries) != 1 || resp.ZeroResultQueries[0] != "nothing here" {
		t.Errorf("zero results: %v", resp.ZeroResultQueries)
	}
}

func TestReindexClearAndStats(t *testing.T) {
	h := newTestRouter(t)
	indexDoc(t, h, "t1", "CLIENT", map[string]any{"name": "Acme"})
	indexDoc(t, h, "t2", "CLIENT", map[string]any{"name": "Globex"})
	indexDoc(t, h, "t1", "PRODUCT", map[string]any{"name": "Laptop"})

	rr := do(t, h, call{method: "POST", path: "/reindex/CLIENT"})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[ReindexResponse](t, rr); resp.Reindexed != 2 || resp.Failed != 0 {
		t.Errorf("reindex: %+v", resp)
	}

	rr = do(t, h, call{method: "POST", path: "/reindex"})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[ReindexAllResponse](t, rr); resp.Reindexed != 3 || len(resp.Types) != 7 {
		t.Errorf("reindex all: %+v", resp)
	}

	expectStatus(t, do(t, h, call{method: "POST", path: "/reindex/NOPE"}), http.StatusBadRequest)

	rr = do(t, h, call{method: "GET", path: "/stats"})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[StatsResponse](t, rr); resp.Total != 3 || resp.ByType["CLIENT"] != 2 {
		t.Errorf("stats: %+v", resp)
	}

	rr = do(t, h, call{method: "DELETE", path: "/index/CLIENT?tenantId=t1"})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[ClearResponse](t, rr); resp.Deleted != 1 {
		t.Errorf("clear: %+v", resp)
	}

	rr = do(t, h, call{method: "GET", path: "/stats"})
	if resp := decode[StatsResponse](t, rr); resp.ByType["CLIENT"] != 1 {
		t.Errorf("stats after clear: %+v", resp)
	}
}

func TestSchemas(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, call{method: "GET", path: "/schemas"})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[SchemaListResponse](t, rr); len(resp.Schemas) != 7 {
		t.Errorf("schemas: got %d", len(resp.Schemas))
	}

	rr = do(t, h, call{method: "GET", path: "/schemas/INVOICE"})
	expectStatus(t, rr, http.StatusOK)

	expectStatus(t, do(t, h, call{method: "GET", path: "/schemas/NOPE"}), http.StatusNotFound)

	rr = do(t, h, call{method: "GET", path: "/schemas/INVOICE/fields/facetable"})
	expectStatus(t, rr, http.StatusOK)
	fields := decode[FieldsResponse](t, rr)
	names := make([]string, len(fields.Fields))
	for i, f := range fields.Fields {
		names[i] = f.Name
	}
	if strings.Join(names, ",") != "clientName,currency,status" {
		t.Errorf("facetable fields: %v", names)
	}

	expectStatus(t, do(t, h, call{method: "GET", path: "/schemas/INVOICE/fields/flying"}), http.StatusBadRequest)
}

func TestPutSchema(t *testing.T) {
	h := newTestRouter(t)
	vendor := map[string]any{
		"locale": "en",
		"fields": []map[string]any{
			{"name": "name", "type": "text", "labels": map[string]string{"en": "Name", "ro": "Nume"},
				"capabilities": []string{"searchable"}, "required": true},
		},
	}
	rr := do(t, h, call{method: "PUT", path: "/schemas/VENDOR", body: vendor})
	expectStatus(t, rr, http.StatusCreated)
	resp := decode[PutSchemaResponse](t, rr)
	if !resp.Created || resp.Schema.Type != "VENDOR" {
		t.Errorf("put: %+v", resp)
	}

	indexDoc(t, h, "t1", "VENDOR", map[string]any{"name": "Initech"})

	rr = do(t, h, call{method: "PUT", path: "/schemas/VENDOR", body: vendor})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[PutSchemaResponse](t, rr); resp.Created || resp.Reindex.Reindexed != 1 {
		t.Errorf("replace: %+v", resp)
	}

	vendor["type"] = "OTHER"
	rr = do(t, h, call{method: "PUT", path: "/schemas/VENDOR", body: vendor})
	expectStatus(t, rr, http.StatusConflict)

	rr = do(t, h, call{method: "PUT", path: "/schemas/BROKEN", body: map[string]any{"fields": []any{}}})
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, call{method: "GET", path: "/health"})
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[HealthResponse](t, rr); resp.Status != "ok" || resp.Checks["index"] != "ok" {
		t.Errorf("health: %+v", resp)
	}

	eng := newTestEngine(t, engine.Options{EventsPinger: failingPinger{}})
	h = NewServer(servicesOf(eng), nil).Router(RouterConfig{})
	rr = do(t, h, call{method: "GET", path: "/health"})
	expectStatus(t, rr, http.StatusServiceUnavailable)
	if resp := decode[HealthResponse](t, rr); resp.Status != "degraded" || resp.Checks["events"] != "error" {
		t.Errorf("degraded health: %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, call{method: "GET", path: "/stats"})
	rr := do(t, h, call{method: "GET", path: "/metrics"})
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "recordex_http_requests_total") {
		t.Error("metrics output missing http request counter")
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, call{method: "GET", path: "/nope"})
	expectStatus(t, rr, http.StatusNotFound)
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeNotFound {
		t.Errorf("code: got %q", resp.Code)
	}
}

func TestRouter_AuthAndRateLimit(t *testing.T) {
	eng := newTestEngine(t, engine.Options{})
	h := NewServer(servicesOf(eng), nil).Router(RouterConfig{APIKeys: []string{"secret"}, RateLimit: 0.001, Burst: 1})

	expectStatus(t, do(t, h, call{method: "GET", path: "/stats"}), http.StatusUnauthorized)
	expectStatus(t, do(t, h, call{method: "GET", path: "/health"}), http.StatusOK)

	req := httptest.NewRequest("GET", "/stats", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	expectStatus(t, rr, http.StatusOK)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	expectStatus(t, rr, http.StatusTooManyRequests)
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	expectStatus(t, rr, http.StatusInternalServerError)
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeInternal {
		t.Errorf("code: got %q", resp.Code)
	}
}
