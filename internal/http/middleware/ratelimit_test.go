package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLimiterAllowsWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("request over burst should be denied")
	}
}

func TestLimiterTracksClientsIndependently(t *testing.T) {
	l := NewLimiter(1, 1)
	if !l.Allow("10.0.0.1") {
		t.Fatal("first client should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("first client should be exhausted")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("second client has its own bucket")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.9")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("429 response should carry Retry-After")
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS([]string{"https://caafimaad.so"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	req.Header.Set("Origin", "https://caafimaad.so")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://caafimaad.so" {
		t.Fatalf("Allow-Origin = %q, want configured origin echoed", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	handler := CORS([]string{"https://caafimaad.so"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Allow-Origin = %q, want empty for unknown origin", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("non-preflight request should still reach the handler, got %d", rec.Code)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	handler := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight should not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", "https://app.caafimaad.so")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatal("preflight should advertise allowed methods")
	}
}
