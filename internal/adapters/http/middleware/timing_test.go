package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gymportal/internal/adapters/http/perf"
	"gymportal/internal/logging"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// TestTiming_LogsRequest verifies a request line with the captured status.
func TestTiming_LogsRequest(t *testing.T) {
	logger, buf := newBufferLogger()
	handler := Timing(logger, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "msg=request") || !strings.Contains(out, "status=404") || !strings.Contains(out, "path=/missing") {
		t.Errorf("log = %q", out)
	}
}

// TestTiming_SlowRequest verifies slow requests log at WARN.
func TestTiming_SlowRequest(t *testing.T) {
	logger, buf := newBufferLogger()
	handler := Timing(logger, time.Nanosecond, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "msg=slow_request") {
		t.Errorf("log = %q", out)
	}
}

// TestTiming_SkipsStatic verifies static assets are excluded from timing.
func TestTiming_SkipsStatic(t *testing.T) {
	logger, buf := newBufferLogger()
	handler := Timing(logger, time.Hour, nil)(okHandler())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	if buf.Len() != 0 {
		t.Errorf("static request logged: %q", buf.String())
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTiming_RequestLogger verifies handlers get a logger carrying request_id.
func TestTiming_RequestLogger(t *testing.T) {
	logger, buf := newBufferLogger()
	handler := Timing(logger, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside_handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "inside_handler") && !strings.Contains(line, "request_id=") {
			t.Errorf("handler log missing request_id: %q", line)
		}
	}
	if !strings.Contains(buf.String(), "inside_handler") {
		t.Error("handler log not written")
	}
}

// TestTiming_RecordsToCollector verifies timed requests feed the collector and static ones do not.
func TestTiming_RecordsToCollector(t *testing.T) {
	logger, _ := newBufferLogger()
	c := perf.NewCollector(10)
	handler := Timing(logger, time.Hour, c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/brew", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	if c.Total() != 1 {
		t.Fatalf("Total = %d, want 1", c.Total())
	}
	rep := c.Report(time.Now().Add(-time.Minute), 5)
	if len(rep.SlowestRoutes) != 1 || rep.SlowestRoutes[0].Label != "POST /brew" {
		t.Errorf("routes = %+v", rep.SlowestRoutes)
	}
}
