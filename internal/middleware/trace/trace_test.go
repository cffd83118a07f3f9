package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.1" })

	var seenID string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		if log.FromContext(r.Context()) == nil {
			t.Error("request logger missing")
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
		if !strings.HasPrefix(seenID, "req_") || rr.Header().Get(HeaderName) != seenID {
			t.Fatalf("request id = %q, header = %q", seenID, rr.Header().Get(HeaderName))
		}
		out := buf.String()
		if !strings.Contains(out, `"status_code":404`) || !strings.Contains(out, `"client_ip":"203.0.113.1"`) {
			t.Fatalf("completion log missing fields: %s", out)
		}
	})

	t.Run("keeps a valid client id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HeaderName, "spa-42")
		h.ServeHTTP(httptest.NewRecorder(), r)
		if seenID != "spa-42" {
			t.Fatalf("request id = %q", seenID)
		}
	})

	t.Run("replaces an unsafe client id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HeaderName, "bad id\n")
		h.ServeHTTP(httptest.NewRecorder(), r)
		if seenID == "bad id\n" || !strings.HasPrefix(seenID, "req_") {
			t.Fatalf("request id = %q", seenID)
		}
	})

	if got := m.GetMetrics().TotalRequests; got != 3 {
		t.Fatalf("TotalRequests = %d", got)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Fatalf("GetRequestID() = %q", id)
	}
}
