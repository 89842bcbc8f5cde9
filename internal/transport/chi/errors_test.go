package chi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain"
)

func TestHandleDomainError(t *testing.T) {
	s := NewServer(Services{}, zap.NewNop())
	tests := []struct {
		name    string
		err     error
		status  int
		code    ErrorCode
		message string
	}{
		{"not found", fmt.Errorf("get document: %w", domain.ErrNotFound),
			http.StatusNotFound, CodeNotFound, "not found"},
		{"invalid type", fmt.Errorf("index: document type %q: %w", "X", domain.ErrInvalidType),
			http.StatusBadRequest, CodeInvalidType, "invalid document type"},
		{"query field error", fmt.Errorf("parse query: %w", domain.NewQueryError("operator", "bad")),
			http.StatusBadRequest, CodeInvalidQuery, `invalid query: field "operator": bad`},
		{"validation", fmt.Errorf("create: %w", fmt.Errorf("%w: name is required", domain.ErrValidation)),
			http.StatusBadRequest, CodeValidationFailed, "validation failed: name is required"},
		{"conflict", domain.ErrConflict, http.StatusConflict, CodeConflict, "conflict"},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited, "rate limited"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.handleDomainError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			expectStatus(t, rr, tc.status)
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tc.code {
				t.Errorf("code: got %q, want %q", resp.Code, tc.code)
			}
			if resp.Message != tc.message {
				t.Errorf("message: got %q, want %q", resp.Message, tc.message)
			}
			if errorCode(tc.err) != tc.code {
				t.Errorf("errorCode: got %q, want %q", errorCode(tc.err), tc.code)
			}
		})
	}
}

func TestIdentityMiddleware(t *testing.T) {
	var got Identity
	h := IdentityMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
	}))
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(HeaderUserID, "u1")
	req.Header.Set(HeaderTenantID, "t1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got.UserID != "u1" || got.Tenant != "t1" {
		t.Errorf("identity: %+v", got)
	}
}
