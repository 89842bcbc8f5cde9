package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain"
	logpkg "github.com/kailas-cloud/recordex/internal/logger"
)

// ErrorCode is the machine-readable error kind in an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeNotFound         ErrorCode = "not_found"
	CodeInvalidType      ErrorCode = "invalid_type"
	CodeInvalidQuery     ErrorCode = "invalid_query"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeConflict         ErrorCode = "conflict"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeInternal         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
	sentinelHandler(domain.ErrInvalidType, http.StatusBadRequest, CodeInvalidType),
	sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
	sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrConflict, http.StatusConflict, CodeConflict),
	sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		resp := ErrorResponse{Code: code, Message: clientMessage(err, sentinel)}
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			resp.Field = fe.Field
		}
		writeJSON(w, status, resp)
		return true
	}
}

// clientMessage trims the operation prefixes our wrapping adds and returns
// the message starting at the sentinel text.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// handleDomainError logs through the request-scoped logger when
// RequestLogMiddleware installed one.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range errorHandlers {
		if h(w, err) {
			logger.Debug("domain error", zap.Error(err))
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

// errorCode maps an error to its code without writing a response.
func errorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrInvalidType):
		return CodeInvalidType
	case errors.Is(err, domain.ErrInvalidQuery):
		return CodeInvalidQuery
	case errors.Is(err, domain.ErrValidation):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrConflict):
		return CodeConflict
	case errors.Is(err, domain.ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

func errorMessage(err error) string {
	for _, s := range []error{
		domain.ErrNotFound, domain.ErrInvalidType, domain.ErrInvalidQuery,
		domain.ErrValidation, domain.ErrConflict, domain.ErrRateLimited,
	} {
		if errors.Is(err, s) {
			return clientMessage(err, s)
		}
	}
	return "internal error"
}
