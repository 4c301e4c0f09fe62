package httputil

import (
	"context"
	"errors"
	"net/http"
)

// HTTPErrorInfo is the status/message pair a handler writes for a failed call.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

type mapping struct {
	err     error
	status  int
	message string
}

// ErrorMapper traduce errores de dominio a respuestas HTTP. Cada handler
// registra sus sentinelas una vez y llama Map por request.
type ErrorMapper struct {
	mappings []mapping
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// WithMapping registers a sentinel with the status and message it maps to.
func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, mapping{err: err, status: status, message: message})
	return m
}

// Map resolves an error against the registered sentinels. Context errors win
// over registered mappings; anything unmatched becomes a 500.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}
	for _, mp := range m.mappings {
		if errors.Is(err, mp.err) {
			return HTTPErrorInfo{Status: mp.status, Message: mp.message}
		}
	}
	return HTTPErrorInfo{Status: http.StatusInternalServerError, Message: "internal server error"}
}
