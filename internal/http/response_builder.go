// Package http exposes the ledger, the view builders and the market lookups
// as a JSON API.
//
// This file holds the fluent response builder and the mapping from domain
// errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/market"
	"fintrack/internal/ports"
	"fintrack/internal/services"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

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

// Body sets the value encoded as the response body. A nil body writes no
// content.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// LoadFailedError is what every read endpoint answers when a collaborator
// could not be reached.
func LoadFailedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, "failed to load")
}

// errBadRequest marks malformed query strings and bodies.
var errBadRequest = errors.New("bad request")

// ErrorFor maps a write or lookup error onto a response. Validation messages
// are returned as-is; store and network errors are not.
func ErrorFor(err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, errBadRequest):
		return BadRequestError(err.Error())
	case errors.Is(err, services.ErrValidation):
		return ErrorResponse(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, ports.ErrDuplicateCategory):
		return ErrorResponse(http.StatusConflict, ports.ErrDuplicateCategory.Error())
	case errors.Is(err, ports.ErrCategoryMismatch):
		return ErrorResponse(http.StatusConflict, ports.ErrCategoryMismatch.Error())
	case errors.Is(err, ports.ErrReadOnly):
		return ErrorResponse(http.StatusNotImplemented, ports.ErrReadOnly.Error())
	case errors.Is(err, market.ErrUnavailable):
		return LoadFailedError()
	default:
		return InternalServerError("internal error")
	}
}
