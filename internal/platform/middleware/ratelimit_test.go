package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func sendFrom(t *testing.T, e *echo.Echo, h echo.HandlerFunc, ip, clinic string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if clinic != "" {
		c.Set("jwt_clinic_id", clinic)
	}
	return rec, h(c)
}

func TestRateLimit_WithinBurst(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec, err := sendFrom(t, e, h, "10.0.0.1", "")
		if err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsBurst(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		if _, err := sendFrom(t, e, h, "10.0.0.2", ""); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	rec, err := sendFrom(t, e, h, "10.0.0.2", "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_SeparateBucketsPerClientAndClinic(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})(okHandler)

	if _, err := sendFrom(t, e, h, "10.0.0.3", ""); err != nil {
		t.Fatalf("first client: %v", err)
	}
	if _, err := sendFrom(t, e, h, "10.0.0.4", ""); err != nil {
		t.Errorf("second client should have its own bucket: %v", err)
	}
	if _, err := sendFrom(t, e, h, "10.0.0.3", "ayur_pune"); err != nil {
		t.Errorf("same IP under another clinic should have its own bucket: %v", err)
	}
	if _, err := sendFrom(t, e, h, "10.0.0.3", ""); err == nil {
		t.Error("expected the first client to be limited")
	}
}

func TestRateLimit_Skipper(t *testing.T) {
	e := echo.New()
	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1, Skipper: func(echo.Context) bool { return true }}
	h := RateLimit(cfg)(okHandler)
	for i := 0; i < 3; i++ {
		if _, err := sendFrom(t, e, h, "10.0.0.5", ""); err != nil {
			t.Fatalf("request %d: expected skipped request to pass, got %v", i+1, err)
		}
	}
}

func TestLimiterStore_EvictsOldestClient(t *testing.T) {
	store, err := newLimiterStore(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, MaxClients: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := store.limiter("a")
	store.limiter("b")
	store.limiter("c")
	if store.clients.Len() != 2 {
		t.Errorf("expected 2 tracked clients, got %d", store.clients.Len())
	}
	if store.limiter("a") == first {
		t.Error("expected evicted client to receive a fresh limiter")
	}
}
