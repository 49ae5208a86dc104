// Package collection is the HTTP client for the remote tag collection, a
// REST-style JSON endpoint that pages and stores tags.
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joestump/tagboard/internal/metrics"
	"github.com/joestump/tagboard/internal/tags"
)

const (
	// DefaultBaseURL is where the collection listens unless configured otherwise.
	DefaultBaseURL = "http://localhost:3333"

	// DefaultFilterParam is the query parameter the collection filters on.
	DefaultFilterParam = "title"

	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 512
)

var (
	// ErrBadBaseURL is returned by New for a base URL without scheme or host.
	ErrBadBaseURL = errors.New("collection base URL must be absolute")

	// ErrEmptyBody is returned when a successful response carries no JSON.
	ErrEmptyBody = errors.New("empty response body")
)

// StatusError is returned when the collection answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Client talks to the tag collection. It implements tags.Collection.
type Client struct {
	base        *url.URL
	http        *http.Client
	filterParam string
	log         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithFilterParam changes the query parameter the filter text is sent as.
func WithFilterParam(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.filterParam = name
		}
	}
}

// WithLogger sets the logger used for upstream request logs.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for the collection rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse collection URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadBaseURL, baseURL)
	}
	c := &Client{
		base:        u,
		http:        &http.Client{Timeout: DefaultTimeout},
		filterParam: DefaultFilterParam,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ListTags fetches one page of tags. An empty filter is not sent, so it
// matches every tag.
func (c *Client) ListTags(ctx context.Context, p tags.ListParams) (*tags.Page, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = tags.DefaultPerPage
	}

	q := url.Values{}
	q.Set("_page", strconv.Itoa(page))
	q.Set("_per_page", strconv.Itoa(perPage))
	if p.Filter != "" {
		q.Set(c.filterParam, p.Filter)
	}

	var out tags.Page
	if err := c.do(ctx, http.MethodGet, "/tags", q, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []tags.Tag{}
	}
	return &out, nil
}

// CreateTag submits t. When the collection echoes the stored record it is
// returned; an empty response body yields nil.
func (c *Client) CreateTag(ctx context.Context, t tags.NewTag) (*tags.Tag, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode tag: %w", err)
	}
	var out tags.Tag
	if err := c.do(ctx, http.MethodPost, "/tags", nil, body, &out); err != nil {
		if errors.Is(err, ErrEmptyBody) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// do sends one request and decodes a JSON response into out. An empty
// successful body is reported as ErrEmptyBody.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "error").Inc()
		c.log.Error("collection request failed", "method", method, "url", u.String(), "request_id", reqID, "err", err)
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("collection returned error status",
			"method", method, "url", u.String(), "status", resp.StatusCode, "request_id", reqID)
		return &StatusError{Method: method, URL: u.String(), StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	c.log.Debug("collection request", "method", method, "url", u.String(),
		"status", resp.StatusCode, "request_id", reqID, "latency", time.Since(start))

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s %s: %w", method, u.Path, ErrEmptyBody)
		}
		return fmt.Errorf("decode %s %s: %w", method, u.Path, err)
	}
	return nil
}
