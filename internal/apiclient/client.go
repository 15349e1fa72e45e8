// Package apiclient calls the PetLink backend over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"petlink/internal/util"
)

// Client calls the PetLink resource API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a non-2xx backend response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return "request failed"
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used
// as-is, without request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a backend client. A zero timeout leaves the
// transport default in place.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: util.NewLoggingTransport(nil),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeDetail reads a FastAPI error body. detail is either a string or a
// list of {msg} entries, which are joined with ", ".
func decodeDetail(r io.Reader) string {
	var errResp struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(&errResp); err != nil {
		return ""
	}
	if len(errResp.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(errResp.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(errResp.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, ", ")
	}
	return ""
}
