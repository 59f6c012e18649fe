package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finmodel/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(log.New(log.Config{Level: log.ParseLevel("info"), Output: &buf}), func(*http.Request) string { return "198.51.100.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if log.FromContext(r.Context()).Component() != log.ComponentHTTP {
			t.Error("request logger missing from context")
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/x", nil))

	if !strings.HasPrefix(seen, "req_") || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id = %q, header = %q", seen, rr.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=404", "client_ip=198.51.100.1", "level=WARN", "request_id=" + seen} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 1 || metrics.FailedRequests != 1 {
		t.Errorf("metrics = %+v", metrics)
	}
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "upstream-1" {
		t.Errorf("request id = %q, want upstream-1", got)
	}
	if m.GetMetrics().FailedRequests != 0 {
		t.Error("200 response counted as failure")
	}
}
