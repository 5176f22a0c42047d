// Package prismic is a small read-only client for the Prismic REST API.
// It resolves the master ref, runs predicate queries, fetches documents by
// UID and follows pagination cursors.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultPageSize is the page size the API applies when none is given.
	DefaultPageSize = 20
	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 100
)

var (
	// ErrNotFound is returned when no document matches a UID lookup.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignCursor is returned when a pagination cursor points at a
	// host other than the configured API.
	ErrForeignCursor = errors.New("prismic: cursor is not on the api host")
	// ErrNoMasterRef is returned when the API root lists no master ref.
	ErrNoMasterRef = errors.New("prismic: api has no master ref")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("prismic: %s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("prismic: %s returned %d: %s", e.URL, e.StatusCode, e.Message)
}

// QueryOptions tune a search request. Zero values use API defaults.
type QueryOptions struct {
	PageSize  int
	Page      int
	Orderings string
}

// Client talks to one repository endpoint, e.g.
// https://spacetraveling.cdn.prismic.io/api/v2.
type Client struct {
	endpoint *url.URL
	token    string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	refTTL   time.Duration

	mu         sync.Mutex
	ref        string
	refFetched time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAccessToken sets the token sent with every request.
func WithAccessToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit throttles outgoing requests. A zero limit disables throttling.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRefTTL sets how long a resolved master ref is reused. Zero resolves
// the ref before every query.
func WithRefTTL(d time.Duration) Option {
	return func(c *Client) { c.refTTL = d }
}

// New returns a client for the repository at endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute url", endpoint)
	}
	c := &Client{
		endpoint: u,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
		refTTL:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// MasterRef returns the current master ref, reusing a recent one when
// the ref TTL allows it.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.ref != "" && c.refTTL > 0 && time.Since(c.refFetched) < c.refTTL {
		ref := c.ref
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	var api API
	if err := c.getJSON(ctx, c.withToken(*c.endpoint).String(), &api); err != nil {
		return "", err
	}
	for _, r := range api.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.ref = r.Ref
			c.refFetched = time.Now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}

// Query runs a predicate search against the master ref.
func (c *Client) Query(ctx context.Context, preds []Predicate, opts QueryOptions) (*Response, error) {
	ref, err := c.MasterRef(ctx)
	if err != nil {
		return nil, err
	}
	u := c.endpoint.JoinPath("documents", "search")
	q := u.Query()
	q.Set("ref", ref)
	if len(preds) > 0 {
		q.Set("q", encodeQuery(preds))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Orderings != "" {
		q.Set("orderings", opts.Orderings)
	}
	u.RawQuery = q.Encode()

	var resp Response
	if err := c.getJSON(ctx, c.withToken(*u).String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryAll runs a search and follows next_page cursors until the result set
// is exhausted.
func (c *Client) QueryAll(ctx context.Context, preds []Predicate, pageSize int) ([]Document, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	resp, err := c.Query(ctx, preds, QueryOptions{PageSize: pageSize})
	if err != nil {
		return nil, err
	}
	docs := append([]Document(nil), resp.Results...)
	seen := map[string]bool{}
	for next := resp.Next(); next != ""; next = resp.Next() {
		if seen[next] {
			return nil, fmt.Errorf("prismic: pagination loop at %s", next)
		}
		seen[next] = true
		resp, err = c.FetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		docs = append(docs, resp.Results...)
	}
	return docs, nil
}

// GetByUID returns the single document of docType with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string) (*Document, error) {
	resp, err := c.Query(ctx, []Predicate{UID(docType, uid)}, QueryOptions{PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%s %q: %w", docType, uid, ErrNotFound)
	}
	doc := resp.Results[0]
	return &doc, nil
}

// FetchPage fetches a pagination cursor returned in a previous response.
// Cursors are only followed when they point at the configured API host.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Response, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("prismic: parse cursor: %w", err)
	}
	if u.Scheme != c.endpoint.Scheme || u.Host != c.endpoint.Host {
		return nil, ErrForeignCursor
	}
	if c.token != "" && u.Query().Get("access_token") == "" {
		u = c.withToken(*u)
	}
	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) withToken(u url.URL) *url.URL {
	if c.token == "" {
		return &u
	}
	q := u.Query()
	q.Set("access_token", c.token)
	u.RawQuery = q.Encode()
	return &u
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("prismic: rate limit wait: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("prismic: request: %w", err)
	}
	defer res.Body.Close()
	c.logger.DebugContext(ctx, "prismic request",
		"path", req.URL.Path,
		"status", res.StatusCode,
		"latency_ms", time.Since(start).Milliseconds())

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return &APIError{StatusCode: res.StatusCode, URL: req.URL.Path, Message: apiMessage(body)}
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("prismic: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(body)
}
