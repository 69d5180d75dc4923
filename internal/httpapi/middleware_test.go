package httpapi

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/httpapi/handler"
	"github.com/vntrieu/mafia/internal/logging"
	"github.com/vntrieu/mafia/internal/ratelimit"
)

// denyAllLimiter denies every request (for testing 429).
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(key string) (bool, int) { return false, 60 }

func TestRateLimitMiddleware_Returns429WhenDenied(t *testing.T) {
	var lim ratelimit.Limiter = denyAllLimiter{}
	handler := RateLimitMiddleware(lim, RateLimitKeyByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddleware_ProxiesWhenAllowed(t *testing.T) {
	handler := RateLimitMiddleware(ratelimit.Noop{}, RateLimitKeyByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("expected body ok, got %q", w.Body.String())
	}
}

func TestRateLimitKeyByIP_DropsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	if got := RateLimitKeyByIP(req); got != "create:10.1.2.3" {
		t.Errorf("got %q", got)
	}
}

func TestLimitRequestBody(t *testing.T) {
	h := LimitRequestBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too long"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestRequireHost(t *testing.T) {
	secret := []byte("s3cret")
	good, _, err := auth.GenerateToken("m1", 5, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	other, _, _ := auth.GenerateToken("m2", 5, secret, time.Hour)
	forged, _, _ := auth.GenerateToken("m1", 5, []byte("wrong"), time.Hour)

	r := chi.NewRouter()
	r.With(RequireHost(secret)).Get("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		c := handler.HostClaimsFromRequest(r)
		if c == nil || c.HostID != 5 {
			t.Errorf("claims not in context: %+v", c)
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"forged", "Bearer " + forged, http.StatusUnauthorized},
		{"other match", "Bearer " + other, http.StatusForbidden},
		{"ok", "Bearer " + good, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/matches/m1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewCompactHandler(&buf, slog.LevelInfo))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/roles", nil))

	line := buf.String()
	if !strings.Contains(line, "[http] GET /api/roles status=418") {
		t.Errorf("unexpected log line %q", line)
	}
}
