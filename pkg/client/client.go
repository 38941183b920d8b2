// Package client provides the HTTP plumbing shared by the career and tutor
// worker clients: authentication, request ids, tracing, JSON calls and
// streamed chat calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/papercomputeco/skillstream/pkg/chatstream"
	"github.com/papercomputeco/skillstream/pkg/logger"
)

const (
	// DefaultTimeout bounds a whole request, including a streamed body.
	DefaultTimeout = 5 * time.Minute

	// RequestIDHeader carries a per-request uuid for log correlation.
	RequestIDHeader = "X-Request-ID"

	defaultUserAgent = "skillstream"
)

// Client talks to one worker.
type Client struct {
	baseURL    *url.URL
	token      string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	reader     *chatstream.Reader
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no effect
// when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithReader sets the stream reader used by Stream.
func WithReader(r *chatstream.Reader) Option {
	return func(c *Client) {
		c.reader = r
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New returns a Client for the worker at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing worker url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, baseURL)
	}

	c := &Client{
		baseURL:   u,
		userAgent: defaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = logger.OrNop(c.logger)
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return r.Method + " " + r.URL.Path
				}),
			),
		}
	}
	if c.reader == nil {
		c.reader = chatstream.NewReader(chatstream.WithLogger(c.logger))
	}

	return c, nil
}

// BaseURL returns the worker URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// NewRequest builds a request for path. A non-nil body is encoded as JSON.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

// Stream POSTs body to path and consumes the streamed reply through h.
// Like chatstream.Reader.Consume, it reports every failure through
// h.OnError.
func (c *Client) Stream(ctx context.Context, path string, body any, h chatstream.Handlers) {
	req, err := c.NewRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		if h.OnError != nil {
			h.OnError(err)
		}
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	c.logger.Debug("starting stream",
		"url", req.URL.String(),
		"request_id", req.Header.Get(RequestIDHeader),
	)

	c.reader.Do(ctx, c.httpClient, req, h)

	c.logger.Debug("stream finished",
		"url", req.URL.String(),
		"duration", time.Since(start),
	)
}

// PostJSON POSTs body to path and decodes a JSON reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

// GetJSON GETs path with query and decodes a JSON reply into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.NewRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("sending request",
		"method", method,
		"url", req.URL.String(),
		"request_id", req.Header.Get(RequestIDHeader),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

// Health is the reply of GET /health.
type Health struct {
	Status    string    `json:"status"`
	Service   string    `json:"service,omitempty"`
	Version   string    `json:"version,omitempty"`
	Endpoints []string  `json:"endpoints,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Health calls the worker's health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	h := &Health{}
	if err := c.GetJSON(ctx, "/health", nil, h); err != nil {
		return nil, err
	}
	return h, nil
}
