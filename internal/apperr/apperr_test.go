package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NotFound("category not found")); got != KindNotFound {
		t.Errorf("KindOf: got %q, want %q", got, KindNotFound)
	}

	// Wrapped domain errors keep their kind.
	wrapped := fmt.Errorf("handler: %w", DuplicateName("name taken"))
	if got := KindOf(wrapped); got != KindDuplicateName {
		t.Errorf("KindOf wrapped: got %q, want %q", got, KindDuplicateName)
	}

	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf non-domain: got %q, want empty", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("name is required"), http.StatusBadRequest},
		{DuplicateName("duplicate sibling"), http.StatusBadRequest},
		{CyclicMove("would create a cycle"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Protected("cannot delete uncategorized"), http.StatusForbidden},
		{Unavailable(errors.New("conn refused")), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestUnavailableUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable(cause)
	if !errors.Is(err, cause) {
		t.Error("Unavailable must wrap its cause")
	}
	if err.Message != "storage temporarily unavailable" {
		t.Errorf("message: got %q", err.Message)
	}
}

func TestErrorString(t *testing.T) {
	err := Validation("name is too long (max %d characters)", 50)
	want := "validation_error: name is too long (max 50 characters)"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}
