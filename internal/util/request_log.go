package util

import (
	"net/http"
	"time"
)

// LoggingTransport stamps every outbound request with a request id and
// emits one structured log line per call.
type LoggingTransport struct {
	Base http.RoundTripper
}

// NewLoggingTransport wraps base; nil means http.DefaultTransport.
func NewLoggingTransport(base http.RoundTripper) *LoggingTransport {
	return &LoggingTransport{Base: base}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	ctx := WithRequestID(req.Context())
	requestID := RequestIDFromContext(ctx)
	req = req.Clone(ctx)
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	logger := LoggerFromContext(ctx)
	if err != nil {
		logger.Warn(
			"http_request",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
		return nil, err
	}
	logger.Debug(
		"http_request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
