package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "remote addr with port", remoteAddr: "203.0.113.9:51234", want: "203.0.113.9"},
		{name: "forwarded wins", remoteAddr: "10.0.0.1:80", forwarded: "198.51.100.7", want: "198.51.100.7"},
		{name: "first forwarded hop", remoteAddr: "10.0.0.1:80", forwarded: "198.51.100.7, 10.0.0.2", want: "198.51.100.7"},
		{name: "invalid forwarded falls through", remoteAddr: "10.0.0.1:80", forwarded: "not-an-ip", want: "10.0.0.1"},
		{name: "bare remote addr", remoteAddr: "203.0.113.9", want: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Fatalf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(3, time.Minute)(next)

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		if code := do("203.0.113.9"); code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, code)
		}
	}
	if code := do("203.0.113.9"); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", code)
	}

	// A different client keeps its own bucket.
	if code := do("198.51.100.7"); code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", code)
	}
}

func TestResolveCountry(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-IPCountry", "id")
	if got := ResolveCountry(req, nil); got != "ID" {
		t.Fatalf("header country = %q, want ID", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.9" {
			t.Fatalf("lookup ip = %q", ip)
		}
		return "sg", nil
	}
	if got := ResolveCountry(req, lookup); got != "SG" {
		t.Fatalf("lookup country = %q, want SG", got)
	}

	failing := func(string) (string, error) { return "", errors.New("no database") }
	if got := ResolveCountry(req, failing); got != "" {
		t.Fatalf("failed lookup country = %q, want empty", got)
	}
}
