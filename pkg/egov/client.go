// Package egov is the HTTP client for the e-Gov law API (version 2).
//
// A Client owns one *http.Client and therefore one connection pool. It is
// created once at startup, shared by every tool invocation, and released
// with Close on shutdown.
package egov

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public v2 endpoint.
	DefaultBaseURL = "https://laws.e-gov.go.jp/api/2"

	// DefaultTimeout bounds a single request, body included.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response is read into memory.
	maxBodyBytes = 64 << 20
)

type (
	// Option configures a Client.
	Option func(*Client)

	// Client issues GET requests against the e-Gov API.
	Client struct {
		baseURL   string
		http      *http.Client
		limiter   *rate.Limiter
		userAgent string
		logger    *slog.Logger
	}

	// Response is a fully read upstream response.
	Response struct {
		URL         string
		StatusCode  int
		ContentType string
		Body        []byte
	}
)

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is left
// as configured by the caller.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the per-request timeout ceiling.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// WithRateLimit spaces outgoing requests to at most perSecond, allowing
// bursts of burst requests. A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New returns a Client for baseURL; an empty baseURL selects
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are built against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins the API root, path and the encoded query. Path segments must
// already be escaped, see PathSegment.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// PathSegment escapes a caller-supplied identifier for use in a path.
func PathSegment(s string) string {
	return url.PathEscape(s)
}

// Get fetches requestURL. A non-2xx status is returned as *HTTPError
// together with the response, so callers can still inspect the body.
func (c *Client) Get(ctx context.Context, requestURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("egov request failed", "url", requestURL, "duration", time.Since(start), "err", err)
		return nil, fmt.Errorf("GET %s: %w", requestURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", requestURL, err)
	}

	c.logger.Debug("egov request",
		"url", requestURL,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"bytes", len(body),
		"duration", time.Since(start))

	out := &Response{
		URL:         requestURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        requestURL,
			Body:       snippet(body),
		}
	}
	return out, nil
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// IsJSON reports whether the response declares a JSON body.
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "json")
}

// IsBinary reports whether the content type contains any of markers.
func (r *Response) IsBinary(markers ...string) bool {
	ct := strings.ToLower(r.ContentType)
	for _, m := range markers {
		if strings.Contains(ct, m) {
			return true
		}
	}
	return false
}

func snippet(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
