package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"media-catalog/internal/logging"
)

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if rw.statusCode != http.StatusOK {
		t.Errorf("default status = %d", rw.statusCode)
	}

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	if rw.statusCode != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status = %d/%d, want the first WriteHeader to win", rw.statusCode, rec.Code)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("bytesWritten = %d, want 5", rw.bytesWritten)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", "line break"},
		{"cr\rlf", "cr lf"},
		{"nul\x00byte", "nulbyte"},
		{"\x1b[31mred", "[31mred"},
		{"tab\tkept", "tab\tkept"},
		{"bell\x07", "bell"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:1", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "1.1.1.1:1", "10.0.0.9"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatW3C(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/entries?path=/m/a.jpg", nil)
	r.RemoteAddr = "127.0.0.1:1234"
	r.Header.Set("User-Agent", "curl 8.0")
	rw := &responseWriter{statusCode: http.StatusNotFound, bytesWritten: 12}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got := formatW3C(r, rw, 15*time.Millisecond, now)
	want := `2026-01-02 03:04:05 127.0.0.1 GET /api/entries path=/m/a.jpg 404 12 15 "curl 8.0"`
	if got != want {
		t.Errorf("formatW3C() =\n%s\nwant\n%s", got, want)
	}
}

func TestShouldSkip(t *testing.T) {
	cfg := DefaultLoggingConfig()
	if !shouldSkip("/metrics", cfg) {
		t.Error("/metrics should be skipped")
	}
	if shouldSkip("/healthz", cfg) {
		t.Error("health checks are logged by default")
	}
	cfg.LogHealthChecks = false
	if !shouldSkip("/readyz", cfg) {
		t.Error("/readyz should be skipped when health checks are not logged")
	}
	if shouldSkip("/api/stats", cfg) {
		t.Error("/api/stats should be logged")
	}
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	logging.SetLevel(logging.LevelInfo)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reconcile", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d", rec.Code)
	}
	if line := buf.String(); !strings.Contains(line, "POST /api/reconcile - 202 2") {
		t.Errorf("log output = %q", line)
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))

	var label string
	router.HandleFunc("/api/thumbnail/{id}", func(w http.ResponseWriter, r *http.Request) {
		label = routeLabel(r)
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/thumbnail/42", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if label != "/api/thumbnail/{id}" {
		t.Errorf("routeLabel() = %q", label)
	}
}

func TestRouteLabelUnmatched(t *testing.T) {
	if got := routeLabel(httptest.NewRequest(http.MethodGet, "/nowhere", nil)); got != "unmatched" {
		t.Errorf("routeLabel() = %q", got)
	}
}

func TestMetricsMiddlewareSkipsPaths(t *testing.T) {
	called := false
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !called {
		t.Error("skipped path did not reach the handler")
	}
}
