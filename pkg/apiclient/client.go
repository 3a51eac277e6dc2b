package apiclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/moviekit/pkg/credential"
	"github.com/dmitrymomot/moviekit/pkg/logger"
	"github.com/dmitrymomot/moviekit/pkg/requestid"
)

// maxResponseBody caps how much of a response body is read.
const maxResponseBody = 4 << 20

// Client calls the movie API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[struct{}]
	log       *slog.Logger
}

// New creates a client for the API rooted at baseURL. The bearer token is
// read from store on every request; store may be nil for anonymous use.
func New(baseURL string, store credential.Store, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   base,
		timeout:   15 * time.Second,
		userAgent: "moviekit",
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var next http.RoundTripper = http.DefaultTransport
	if c.http != nil && c.http.Transport != nil {
		next = c.http.Transport
	}
	hc := &http.Client{Timeout: c.timeout}
	if c.http != nil {
		copied := *c.http
		hc = &copied
		if hc.Timeout == 0 {
			hc.Timeout = c.timeout
		}
	}
	hc.Transport = &bearerTransport{next: next, store: store, userAgent: c.userAgent}
	c.http = hc

	return c, nil
}

// NewFromConfig creates a client from cfg. Extra options are applied after
// the ones derived from cfg.
func NewFromConfig(cfg Config, store credential.Store, opts ...Option) (*Client, error) {
	return New(cfg.BaseURL, store, append(cfg.Options(), opts...)...)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidBaseURL
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// endpoint joins path onto the base URL. A trailing slash in path is kept.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// do runs a single request through the limiter and the circuit breaker.
// Nothing is retried.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Join(ErrRateLimited, err)
		}
	}

	if c.breaker == nil {
		return c.send(ctx, method, path, query, body, out)
	}

	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.send(ctx, method, path, query, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrCircuitOpen, err)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Join(ErrEncodeRequest, err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, requestID := requestid.Ensure(ctx)
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set(requestid.Header, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "api request failed",
			slog.String("method", method),
			slog.String("path", path),
			logger.RequestID(requestID),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}

	c.log.DebugContext(ctx, "api request",
		logger.HTTPRequest(method, path, resp.StatusCode),
		logger.RequestID(requestID),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}

// isBreakerSuccess treats client errors and caller cancellation as healthy
// backend responses.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}
	return errors.Is(err, context.Canceled)
}
