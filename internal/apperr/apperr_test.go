package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfUnwrapsThroughWrapping(t *testing.T) {
	base := New(Conflict, "slot already taken")
	wrapped := fmt.Errorf("create booking: %w", base)

	if got := KindOf(wrapped); got != Conflict {
		t.Fatalf("KindOf = %v, want Conflict", got)
	}
	if got := KindOf(errors.New("plain")); got != Unknown {
		t.Fatalf("KindOf(plain) = %v, want Unknown", got)
	}
}

func TestHTTPStatusRoundTrip(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
	}{
		{Validation, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{Auth, http.StatusUnauthorized},
		{NotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := tc.kind.HTTPStatus(); got != tc.status {
			t.Errorf("%v.HTTPStatus() = %d, want %d", tc.kind, got, tc.status)
		}
		if got := FromStatus(tc.status, "").Kind; got != tc.kind {
			t.Errorf("FromStatus(%d) = %v, want %v", tc.status, got, tc.kind)
		}
	}
}

func TestFromStatusServerErrorIsNetwork(t *testing.T) {
	err := FromStatus(http.StatusServiceUnavailable, "")
	if err.Kind != Network {
		t.Fatalf("Kind = %v, want Network", err.Kind)
	}
	if err.Message == "" {
		t.Fatal("expected a default message")
	}
}
