package util

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWithRequestIDKeepsExistingID(t *testing.T) {
	ctx := WithRequestID(context.Background())
	first := RequestIDFromContext(ctx)
	if first == "" {
		t.Fatal("expected generated request id in context")
	}
	if got := RequestIDFromContext(WithRequestID(ctx)); got != first {
		t.Fatalf("request id should be stable: got %q want %q", got, first)
	}
	if LoggerFromContext(ctx) == slog.Default() {
		t.Fatal("expected a request-scoped logger in context")
	}
}

func TestLoggerFromContextFallsBackToDefault(t *testing.T) {
	if LoggerFromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger without context logger")
	}
}

func TestLoggingTransportStampsRequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	prev := slog.Default()
	InitLogger("debug", "json", &buf)
	defer slog.SetDefault(prev)

	client := &http.Client{Transport: NewLoggingTransport(nil)}
	resp, err := client.Get(srv.URL + "/care_orders/")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	if seen == "" {
		t.Fatal("expected X-Request-Id on outbound request")
	}
	out := buf.String()
	if !strings.Contains(out, `"request_id":"`+seen+`"`) {
		t.Fatalf("expected log line with request id %q, got %s", seen, out)
	}
	if !strings.Contains(out, `"path":"/care_orders/"`) || !strings.Contains(out, `"status":204`) {
		t.Fatalf("expected path and status in log, got %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
