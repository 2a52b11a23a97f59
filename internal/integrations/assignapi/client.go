// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package assignapi is the HTTP client for the assignee prediction service.
package assignapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/metrics"
	"github.com/similigh/mailbox-monitor/internal/prediction"
	"github.com/similigh/mailbox-monitor/internal/utils/retry"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prediction service %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func isRetryable(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Retryable()
}

// Client talks to the prediction service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      retry.Config
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a prediction service client. An empty apiKey disables
// the Authorization header.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry.DefaultConfig(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("assignapi")
	return c
}

// Predict requests an assignee recommendation. The response is validated with
// prediction.ParseResponse.
func (c *Client) Predict(ctx context.Context, req prediction.Request) (*prediction.Prediction, error) {
	start := time.Now()
	raw, err := retry.Do(ctx, c.retry, "predict-assignee", isRetryable, func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, "/predict-assignee", req)
	})
	if err != nil {
		metrics.RecordPredictionLatency("http", "error", time.Since(start))
		return nil, err
	}

	p, err := prediction.ParseResponse(raw)
	if err != nil {
		metrics.RecordPredictionLatency("http", "invalid", time.Since(start))
		return nil, err
	}
	metrics.RecordPredictionLatency("http", "ok", time.Since(start))

	c.logger.Debug("Received prediction",
		zap.String("recommended_assignee", p.RecommendedAssignee),
		zap.Float64("confidence", p.Confidence))
	return p, nil
}

// Health checks GET /health returns 200.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// Assignees lists the assignees the service knows about, optionally for one project.
func (c *Client) Assignees(ctx context.Context, project string) ([]string, error) {
	path := "/assignees"
	if project != "" {
		path += "?project=" + url.QueryEscape(project)
	}

	raw, err := retry.Do(ctx, c.retry, "assignees", isRetryable, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return nil, err
	}

	var out []string
	if err := decodeList(raw, "assignees", &out); err != nil {
		return nil, fmt.Errorf("failed to parse assignees: %w", err)
	}
	return out, nil
}

// HistoryEntry is one past prediction as reported by the service.
type HistoryEntry map[string]any

// History returns up to limit recent predictions.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	path := "/predictions/history?limit=" + strconv.Itoa(limit)

	raw, err := retry.Do(ctx, c.retry, "history", isRetryable, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return nil, err
	}

	var out []HistoryEntry
	if err := decodeList(raw, "predictions", &out); err != nil {
		return nil, fmt.Errorf("failed to parse prediction history: %w", err)
	}
	return out, nil
}

// decodeList accepts either a bare JSON array or an object wrapping the array
// under key.
func decodeList(raw []byte, key string, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	inner, ok := wrapper[key]
	if !ok {
		return fmt.Errorf("response has no %q field", key)
	}
	return json.Unmarshal(inner, out)
}

func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call prediction service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read prediction service response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		endpoint := path
		if i := strings.IndexByte(endpoint, '?'); i >= 0 {
			endpoint = endpoint[:i]
		}
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}
