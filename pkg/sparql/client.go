// Package sparql is a thin client for a SPARQL protocol endpoint that accepts
// form-encoded POST requests.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"gndsync/pkg/logging"
)

// DefaultTimeout is the server-side execution limit sent with every query.
const DefaultTimeout = 15 * time.Minute

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sparql_requests_total",
		Help: "SPARQL requests by query name and outcome",
	}, []string{"query", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sparql_request_duration_seconds",
		Help:    "SPARQL request duration in seconds by query name",
		Buckets: []float64{0.1, 0.5, 1, 5, 30, 120, 600},
	}, []string{"query"})
)

// Request is one query to send.
type Request struct {
	// Name labels the query in logs and metrics (e.g. "T1").
	Name   string
	Query  string
	Format Format
}

// Response is what the endpoint answered.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client posts queries to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	username   string
	password   string
	timeout    time.Duration
	userAgent  string
	logger     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithBasicAuth sends HTTP Basic credentials with every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the server-side timeout field.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient returns a client for endpoint. The underlying http.Client has no
// deadline of its own; a request waits for the response or a transport error.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		userAgent:  "gndsync/1.0",
		logger:     logging.For("sparql"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL queries are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send posts one query. A *TransportError is returned when no response was
// received. For a non-2xx status the response is returned together with a
// *StatusError.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	format := r.Format
	if format == "" {
		format = FormatAuto
	}
	form := url.Values{}
	form.Set("query", r.Query)
	form.Set("format", string(format))
	form.Set("timeout", strconv.FormatInt(c.timeout.Milliseconds(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", r.Name, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(r.Name).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(r.Name, "transport_error").Inc()
		return nil, &TransportError{Query: r.Name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(r.Name, "transport_error").Inc()
		return nil, &TransportError{Query: r.Name, Err: fmt.Errorf("read body: %w", err)}
	}

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	c.logger.Debug().
		Str("query", r.Name).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("query answered")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestsTotal.WithLabelValues(r.Name, strconv.Itoa(resp.StatusCode/100)+"xx").Inc()
		return out, &StatusError{Query: r.Name, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	requestsTotal.WithLabelValues(r.Name, "2xx").Inc()
	return out, nil
}

// Select sends a query with the JSON results format and decodes the table.
func (c *Client) Select(ctx context.Context, name, query string) (*Results, error) {
	resp, err := c.Send(ctx, Request{Name: name, Query: query, Format: FormatJSON})
	if err != nil {
		return nil, err
	}
	var res Results
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return nil, fmt.Errorf("decode %s results: %w", name, err)
	}
	return &res, nil
}
