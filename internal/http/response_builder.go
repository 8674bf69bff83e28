// This file implements the Builder Pattern for JSON responses and the single
// mapping from engine error kinds to HTTP status codes.

package http

import (
	"encoding/json"
	"net/http"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.data != nil {
		_ = json.NewEncoder(w).Encode(b.data)
	}
}

// ErrorBody is the wire form of an engine error.
type ErrorBody struct {
	Kind    core.Kind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Month   int       `json:"month,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse renders err. Unexpected errors get a generic message; the
// detail is only logged.
func ErrorResponse(r *http.Request, err error) *JSONResponseBuilder {
	body := ErrorBody{Kind: core.KindUnexpected, Code: core.CodeInternal, Message: "internal server error"}
	var e *core.Error
	if core.KindOf(err) != core.KindUnexpected && asError(err, &e) {
		body = ErrorBody{Kind: e.Kind, Code: e.Code, Message: e.Message, Month: e.Month}
	}

	logger := log.FromContext(r.Context())
	if body.Kind == core.KindUnexpected {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldErrorKind, body.Kind,
			log.FieldErrorCode, body.Code,
			log.FieldError, err)
	}

	return NewJSONResponse().
		Status(StatusFor(body.Kind)).
		Data(map[string]ErrorBody{"error": body})
}

// BadRequestError creates a 400 response for a malformed request.
func BadRequestError(r *http.Request, format string, args ...any) *JSONResponseBuilder {
	return ErrorResponse(r, core.Validation(core.CodeInvalidRequest, format, args...))
}
