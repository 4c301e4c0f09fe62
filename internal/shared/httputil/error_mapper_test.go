package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errNotFound = errors.New("thing not found")

func TestMapResolvesRegisteredSentinels(t *testing.T) {
	mapper := NewErrorMapper().
		WithMapping(errNotFound, http.StatusNotFound, "thing not found")

	info := mapper.Map(fmt.Errorf("lookup: %w", errNotFound))
	if info.Status != http.StatusNotFound || info.Message != "thing not found" {
		t.Fatalf("unexpected mapping: %+v", info)
	}
}

func TestMapDefaults(t *testing.T) {
	mapper := NewErrorMapper()

	if info := mapper.Map(nil); info.Status != http.StatusOK {
		t.Fatalf("nil error must map to 200, got %+v", info)
	}
	if info := mapper.Map(errors.New("unregistered")); info.Status != http.StatusInternalServerError {
		t.Fatalf("unknown error must map to 500, got %+v", info)
	}
}

func TestMapContextErrorsWinOverMappings(t *testing.T) {
	mapper := NewErrorMapper().
		WithMapping(context.DeadlineExceeded, http.StatusTeapot, "never used")

	if info := mapper.Map(context.DeadlineExceeded); info.Status != http.StatusGatewayTimeout {
		t.Fatalf("deadline must map to 504, got %+v", info)
	}
	if info := mapper.Map(context.Canceled); info.Status != http.StatusServiceUnavailable {
		t.Fatalf("cancellation must map to 503, got %+v", info)
	}
}
