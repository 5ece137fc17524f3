// Package http implements transport.Requester over HTTP with ordered host failover.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/metrics"
	"github.com/kailas-cloud/indexflow/internal/transport"
)

const (
	defaultSearchTimeout = 5 * time.Second
	defaultWriteTimeout  = 30 * time.Second
	maxErrorBody         = 4 << 10
)

// ErrNoHosts is returned for a request with an empty host pool.
var ErrNoHosts = errors.New("no hosts configured")

// StatusError is a non-retryable HTTP error response.
type StatusError struct {
	Host       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: http status %d", e.Host, e.StatusCode)
	}
	return fmt.Sprintf("%s: http status %d: %s", e.Host, e.StatusCode, e.Message)
}

// Config holds the HTTP transport settings.
type Config struct {
	HTTPClient    *http.Client
	Headers       map[string]string
	SearchTimeout time.Duration
	WriteTimeout  time.Duration
	Logger        *zap.Logger
}

// Client is a transport.Requester that tries hosts in order.
// Network errors and 5xx responses move on to the next host; 4xx responses
// are returned immediately as *StatusError.
type Client struct {
	hc            *http.Client
	headers       map[string]string
	searchTimeout time.Duration
	writeTimeout  time.Duration
	logger        *zap.Logger
}

var _ transport.Requester = (*Client)(nil)

// New creates an HTTP transport.
func New(cfg Config) *Client {
	c := &Client{
		hc:            cfg.HTTPClient,
		headers:       cfg.Headers,
		searchTimeout: cfg.SearchTimeout,
		writeTimeout:  cfg.WriteTimeout,
		logger:        cfg.Logger,
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.searchTimeout <= 0 {
		c.searchTimeout = defaultSearchTimeout
	}
	if c.writeTimeout <= 0 {
		c.writeTimeout = defaultWriteTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// PerformQuery implements transport.Requester.
func (c *Client) PerformQuery(ctx context.Context, req transport.Request) (json.RawMessage, error) {
	if len(req.Hosts) == 0 {
		return nil, ErrNoHosts
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	timeout, kind := c.writeTimeout, "write"
	if req.IsSearch {
		timeout, kind = c.searchTimeout, "search"
	}

	var lastErr error
	for _, host := range req.Hosts {
		start := time.Now()
		resp, retry, err := c.do(ctx, host, req, body, timeout)
		metrics.UpstreamRequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(host, kind, "ok").Inc()
			return resp, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(host, kind, "error").Inc()
			return nil, err
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(host, kind, "retry").Inc()
		metrics.UpstreamFailoversTotal.WithLabelValues(host).Inc()
		c.logger.Debug("Host failed, trying next",
			zap.String("host", host),
			zap.String("path", req.Path),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("all hosts failed: %w", lastErr)
}

// do sends one attempt. retry reports whether the next host should be tried.
func (c *Client) do(
	ctx context.Context, host string, req transport.Request, body []byte, timeout time.Duration,
) (_ json.RawMessage, retry bool, _ error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, baseURL(host)+req.Path, rd)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", host, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%s: read response: %w", host, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, true, &StatusError{Host: host, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	case resp.StatusCode >= 400:
		return nil, false, &StatusError{Host: host, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return json.RawMessage(data), false, nil
}

// baseURL accepts bare host names (https assumed) and full URLs.
func baseURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/")
	}
	return "https://" + host
}

// errorMessage extracts {"message": ...} from an error body, or returns the truncated body.
func errorMessage(data []byte) string {
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &msg); err == nil && msg.Message != "" {
		return msg.Message
	}
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	return strings.TrimSpace(string(data))
}
