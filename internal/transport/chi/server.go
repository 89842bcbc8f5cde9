package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/catalog"
	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/document/patch"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/metrics"
	analyticsuc "github.com/kailas-cloud/recordex/internal/usecase/analytics"
	healthuc "github.com/kailas-cloud/recordex/internal/usecase/health"
	historyuc "github.com/kailas-cloud/recordex/internal/usecase/history"
	indexinguc "github.com/kailas-cloud/recordex/internal/usecase/indexing"
	saveduc "github.com/kailas-cloud/recordex/internal/usecase/savedsearch"
	schemauc "github.com/kailas-cloud/recordex/internal/usecase/schema"
	searchuc "github.com/kailas-cloud/recordex/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/recordex/internal/usecase/suggest"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Services are the use cases the HTTP API exposes.
type Services struct {
	Indexing  *indexinguc.Service
	Search    *searchuc.Service
	Suggest   *suggestuc.Service
	Saved     *saveduc.Service
	History   *historyuc.Service
	Analytics *analyticsuc.Aggregator
	Schemas   *schemauc.Service
	Health    *healthuc.Service
}

// Server serves the recordex HTTP API.
type Server struct {
	svc    Services
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, logger: logger}
}

// RouterConfig configures the middleware stack.
type RouterConfig struct {
	APIKeys   []string
	RateLimit float64
	Burst     int
}

// Router assembles the middleware stack and every route.
func (s *Server) Router(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(RateLimitMiddleware(cfg.RateLimit, cfg.Burst))
	r.Use(metrics.Middleware())
	r.Use(IdentityMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Post("/documents", s.IndexDocument)
	r.Post("/documents/batch", s.BatchIndex)
	r.Get("/documents/{id}", s.GetDocument)
	r.Patch("/documents/{id}", s.UpdateDocument)
	r.Delete("/documents/{id}", s.DeleteDocument)

	r.Post("/search", s.Search)
	r.Get("/suggest", s.Suggest)

	r.Get("/saved-searches", s.ListSavedSearches)
	r.Post("/saved-searches", s.CreateSavedSearch)
	r.Get("/saved-searches/{id}", s.GetSavedSearch)
	r.Patch("/saved-searches/{id}", s.UpdateSavedSearch)
	r.Delete("/saved-searches/{id}", s.DeleteSavedSearch)
	r.Post("/saved-searches/{id}/execute", s.ExecuteSavedSearch)

	r.Get("/history", s.GetHistory)
	r.Delete("/history", s.ClearHistory)
	r.Get("/analytics", s.GetAnalytics)

	r.Post("/reindex", s.ReindexAll)
	r.Post("/reindex/{type}", s.Reindex)
	r.Delete("/index/{type}", s.ClearIndex)
	r.Get("/stats", s.Stats)

	r.Get("/schemas", s.ListSchemas)
	r.Get("/schemas/{type}", s.GetSchema)
	r.Put("/schemas/{type}", s.PutSchema)
	r.Get("/schemas/{type}/fields/{capability}", s.SchemaFields)

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// IndexDocument handles POST /documents.
func (s *Server) IndexDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := s.svc.Indexing.Index(r.Context(), s.indexInput(r, req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentToResponse(doc))
}

// BatchIndex handles POST /documents/batch.
func (s *Server) BatchIndex(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "documents must not be empty")
		return
	}
	items := make([]indexinguc.Input, len(req.Documents))
	for i, d := range req.Documents {
		items[i] = s.indexInput(r, d)
	}
	writeJSON(w, http.StatusOK, batchToResponse(s.svc.Indexing.BulkIndex(r.Context(), items)))
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Indexing.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// UpdateDocument handles PATCH /documents/{id}.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req PatchDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := patch.New(req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	doc, err := s.svc.Indexing.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Indexing.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var spec query.Spec
	if !decodeBody(w, r, &spec) {
		return
	}
	id := IdentityFromContext(r.Context())
	if spec.Tenant == "" {
		spec.Tenant = id.Tenant
	}
	page, err := s.svc.Search.Search(r.Context(), spec, id.UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// Suggest handles GET /suggest?q=&type=&limit=&fuzzy=.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := intParam(w, q.Get("limit"), "limit")
	if !ok {
		return
	}
	tenant := q.Get("tenantId")
	if tenant == "" {
		tenant = IdentityFromContext(r.Context()).Tenant
	}
	list := s.svc.Suggest.Suggest(r.Context(), suggestuc.Request{
		Prefix: q.Get("q"),
		Type:   q.Get("type"),
		Tenant: tenant,
		Limit:  limit,
		Fuzzy:  boolParam(q.Get("fuzzy")),
	})
	writeJSON(w, http.StatusOK, suggestionsToResponse(list))
}

// ListSavedSearches handles GET /saved-searches.
func (s *Server) ListSavedSearches(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Saved.List(r.Context(), IdentityFromContext(r.Context()).UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]SavedSearchResponse, len(list))
	for i, saved := range list {
		out[i] = savedToResponse(saved)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateSavedSearch handles POST /saved-searches.
func (s *Server) CreateSavedSearch(w http.ResponseWriter, r *http.Request) {
	var req SavedSearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name, err := domsaved.ParseName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "name: "+err.Error())
		return
	}
	saved, err := s.svc.Saved.Create(r.Context(), IdentityFromContext(r.Context()).UserID, saveduc.CreateInput{
		Name:      name,
		Query:     req.Query,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, savedToResponse(saved))
}

// GetSavedSearch handles GET /saved-searches/{id}.
func (s *Server) GetSavedSearch(w http.ResponseWriter, r *http.Request) {
	saved, err := s.svc.Saved.Get(r.Context(), IdentityFromContext(r.Context()).UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, savedToResponse(saved))
}

// UpdateSavedSearch handles PATCH /saved-searches/{id}.
func (s *Server) UpdateSavedSearch(w http.ResponseWriter, r *http.Request) {
	var req PatchSavedSearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	changes := domsaved.Changes{Query: req.Query, IsDefault: req.IsDefault}
	if req.Name != nil {
		name, err := domsaved.ParseName(req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "name: "+err.Error())
			return
		}
		changes.Name = name
	}
	saved, err := s.svc.Saved.Update(r.Context(), IdentityFromContext(r.Context()).UserID, chi.URLParam(r, "id"), changes)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, savedToResponse(saved))
}

// DeleteSavedSearch handles DELETE /saved-searches/{id}.
func (s *Server) DeleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Saved.Delete(r.Context(), IdentityFromContext(r.Context()).UserID, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExecuteSavedSearch handles POST /saved-searches/{id}/execute. The body is optional.
func (s *Server) ExecuteSavedSearch(w http.ResponseWriter, r *http.Request) {
	var o query.Overrides
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &o) {
			return
		}
	}
	page, err := s.svc.Saved.Execute(r.Context(), IdentityFromContext(r.Context()).UserID, chi.URLParam(r, "id"), o)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// GetHistory handles GET /history?limit=.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r.URL.Query().Get("limit"), "limit")
	if !ok {
		return
	}
	entries, err := s.svc.History.List(r.Context(), IdentityFromContext(r.Context()).UserID, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyToResponse(entries))
}

// ClearHistory handles DELETE /history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.History.Clear(r.Context(), IdentityFromContext(r.Context()).UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearResponse{Deleted: n})
}

// GetAnalytics handles GET /analytics.
func (s *Server) GetAnalytics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analyticsToResponse(s.svc.Analytics.Snapshot()))
}

// ReindexAll handles POST /reindex.
func (s *Server) ReindexAll(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Indexing.ReindexAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(sum))
}

// Reindex handles POST /reindex/{type}.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Indexing.Reindex(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reindexToResponse(res))
}

// ClearIndex handles DELETE /index/{type}?tenantId=.
func (s *Server) ClearIndex(w http.ResponseWriter, r *http.Request) {
	tenant := r.URL.Query().Get("tenantId")
	if tenant == "" {
		tenant = IdentityFromContext(r.Context()).Tenant
	}
	n, err := s.svc.Indexing.Clear(r.Context(), chi.URLParam(r, "type"), tenant)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearResponse{Deleted: n})
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Indexing.Stats(r.Context())
	byType := st.ByType
	if byType == nil {
		byType = map[string]int{}
	}
	writeJSON(w, http.StatusOK, StatsResponse{Total: st.Total, ByType: byType})
}

// ListSchemas handles GET /schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	list := s.svc.Schemas.List(r.Context())
	resp := SchemaListResponse{Schemas: make([]catalog.Schema, len(list))}
	for i, sch := range list {
		resp.Schemas[i] = catalog.FromDomain(sch)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSchema handles GET /schemas/{type}.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	sch, err := s.svc.Schemas.Get(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.FromDomain(sch))
}

// PutSchema handles PUT /schemas/{type}: registers the schema and reindexes the type.
func (s *Server) PutSchema(w http.ResponseWriter, r *http.Request) {
	var req catalog.Schema
	if !decodeBody(w, r, &req) {
		return
	}
	docType := chi.URLParam(r, "type")
	if req.Type == "" {
		req.Type = docType
	}
	if req.Type != docType {
		s.handleDomainError(w, r, fmt.Errorf("%w: body type %q does not match path type %q",
			domain.ErrConflict, req.Type, docType))
		return
	}
	sch, err := req.ToDomain()
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error()))
		return
	}
	res, err := s.svc.Schemas.Put(r.Context(), sch)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, PutSchemaResponse{
		Schema:  catalog.FromDomain(res.Schema),
		Created: res.Created,
		Reindex: reindexToResponse(res.Reindex),
	})
}

// SchemaFields handles GET /schemas/{type}/fields/{capability}.
func (s *Server) SchemaFields(w http.ResponseWriter, r *http.Request) {
	docType, capability := chi.URLParam(r, "type"), chi.URLParam(r, "capability")
	fields, err := s.svc.Schemas.Fields(r.Context(), docType, capability)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := FieldsResponse{Type: docType, Capability: strings.ToLower(capability), Fields: make([]catalog.Field, len(fields))}
	for i, f := range fields {
		resp.Fields[i] = catalog.FieldFromDomain(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report))
}

// indexInput builds an indexing input; the body tenant wins over X-Tenant-ID.
func (s *Server) indexInput(r *http.Request, req DocumentRequest) indexinguc.Input {
	tenant := req.TenantID
	if tenant == "" {
		tenant = IdentityFromContext(r.Context()).Tenant
	}
	return indexinguc.Input{Type: req.Type, Tenant: tenant, Fields: req.Fields, Locale: req.Locale}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func boolParam(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}
