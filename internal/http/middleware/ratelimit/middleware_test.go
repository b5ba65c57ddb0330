package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddlewareBurstThenLimit(t *testing.T) {
	middleware := Middleware(false, time.Minute, 2, 16, time.Minute)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"

		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		return res
	}

	for i := 0; i < 2; i++ {
		res := do()

		if e, g := http.StatusOK, res.Code; e != g {
			t.Fatalf("request #%d: expected status %d, got %d", i+1, e, g)
		}

		if e, g := "2", res.Header().Get("X-RateLimit-Limit"); e != g {
			t.Errorf("expected X-RateLimit-Limit %q, got %q", e, g)
		}

		if g := res.Header().Get("X-RateLimit-Reset"); g == "" {
			t.Error("expected a X-RateLimit-Reset header")
		}
	}

	res := do()

	if e, g := http.StatusTooManyRequests, res.Code; e != g {
		t.Fatalf("expected status %d, got %d", e, g)
	}

	if g := res.Header().Get("Retry-After"); g == "" {
		t.Error("expected a Retry-After header")
	}
}

func TestMiddlewareTrustedHeaders(t *testing.T) {
	middleware := Middleware(true, time.Minute, 1, 16, time.Minute)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(forwardedFor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", forwardedFor)

		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		return res
	}

	if e, g := http.StatusOK, do("198.51.100.1").Code; e != g {
		t.Fatalf("expected status %d, got %d", e, g)
	}

	if e, g := http.StatusTooManyRequests, do("198.51.100.1").Code; e != g {
		t.Fatalf("expected status %d, got %d", e, g)
	}

	// A different forwarded client keeps its own budget.
	if e, g := http.StatusOK, do("198.51.100.2, 192.0.2.1").Code; e != g {
		t.Fatalf("expected status %d, got %d", e, g)
	}
}
