// Package client provides the data fetcher: it resolves pages from the page
// cache or the remote data API, validates their shape and caches them.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/datatable-client/pkg/cache"
	"github.com/Sternrassler/datatable-client/pkg/page"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Sternrassler/datatable-client/pkg/client"

// Prometheus metrics for fetch operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datatable_requests_total",
		Help: "Total data API requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "datatable_request_duration_seconds",
		Help:    "Data API request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datatable_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})

	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datatable_fetches_total",
		Help: "Total page fetches by source",
	}, []string{"source"}) // "cache", "network"
)

// Config holds the client configuration.
type Config struct {
	// Endpoint is the data API URL, e.g. "https://example.org/data"
	Endpoint string

	// DatasetParam is the query parameter carrying the dataset identifier.
	// The Flask backend reads "table_name".
	DatasetParam string

	// UserAgent header sent with every request (optional)
	UserAgent string

	// Timeout bounds a single HTTP request; 0 means no client-side timeout
	Timeout time.Duration

	// MaxBodyBytes caps the response body that will be read
	MaxBodyBytes int64
}

// DefaultConfig returns a default configuration for endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:     endpoint,
		DatasetParam: "dataset",
		UserAgent:    "datatable-client/0.1.0",
		Timeout:      30 * time.Second,
		MaxBodyBytes: 32 << 20,
	}
}

// Request identifies one page to fetch.
type Request struct {
	Dataset  string
	Page     int
	PageSize int
}

// Validate rejects requests that cannot name a page.
func (r Request) Validate() error {
	switch {
	case r.Dataset == "":
		return fmt.Errorf("%w: dataset is required", ErrInvalidRequest)
	case r.Page < 1:
		return fmt.Errorf("%w: page %d < 1", ErrInvalidRequest, r.Page)
	case r.PageSize < 1:
		return fmt.Errorf("%w: page size %d < 1", ErrInvalidRequest, r.PageSize)
	}
	return nil
}

// Client is the data fetcher.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	keyer      cache.Keyer
	config     Config
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// New creates a new data fetcher reading and writing pageCache with keys
// bound to keyer's run identifier.
func New(cfg Config, pageCache *cache.Manager, keyer cache.Keyer) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if pageCache == nil {
		return nil, fmt.Errorf("page cache is required")
	}
	if cfg.DatasetParam == "" {
		cfg.DatasetParam = "dataset"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 32 << 20
	}

	logger := log.With().Str("component", "datatable-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  pageCache,
		keyer:  keyer,
		config: cfg,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Key returns the cache key for req under the client's run.
func (c *Client) Key(req Request) cache.PageKey {
	return c.keyer.Key(req.Dataset, req.Page, req.PageSize)
}

// FetchPage returns the requested page, from cache when present and from
// the data API otherwise. Concurrent identical calls are not merged; each
// checks the cache and may issue its own request.
//
// Failures are *FetchError values matching ErrNetwork or ErrInvalidData.
func (c *Client) FetchPage(ctx context.Context, req Request) (*page.Page, error) {
	ctx, span := c.tracer.Start(ctx, "FetchPage", trace.WithAttributes(
		attribute.String("dataset", req.Dataset),
		attribute.Int("page", req.Page),
		attribute.Int("page_size", req.PageSize),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Step 1: Check Cache
	key := c.Key(req)
	if p, ok := c.cache.Get(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		fetchesTotal.WithLabelValues("cache").Inc()
		c.logger.Debug().
			Str("dataset", req.Dataset).
			Int("page", req.Page).
			Int("page_size", req.PageSize).
			Msg("Serving page from cache")
		return p, nil
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))
	fetchesTotal.WithLabelValues("network").Inc()

	// Step 2: Fetch from the data API
	p, err := c.fetchRemote(ctx, req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ClassOf(err))).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().
			Err(err).
			Str("dataset", req.Dataset).
			Int("page", req.Page).
			Str("error_class", string(ClassOf(err))).
			Msg("Page fetch failed")
		return nil, err
	}

	// Step 3: Cache on success (best effort)
	if res := c.cache.Put(ctx, key, p); res != cache.PutStored {
		c.logger.Debug().Str("result", res.String()).Msg("Page not cached")
	}

	return p, nil
}

// fetchRemote issues the HTTP request and decodes the page.
func (c *Client) fetchRemote(ctx context.Context, req Request) (*page.Page, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(req), nil)
	if err != nil {
		return nil, &FetchError{Class: ErrorClassNetwork, Message: "create request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("url", httpReq.URL.String()).
		Msg("Executing data request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &FetchError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Class:      ErrorClassNetwork,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		return nil, &FetchError{
			Class:      ErrorClassNetwork,
			StatusCode: resp.StatusCode,
			Message:    "read response body",
			Err:        err,
		}
	}

	p, err := page.Decode(body)
	if err != nil {
		return nil, &FetchError{
			Class:      ErrorClassMalformed,
			StatusCode: resp.StatusCode,
			Message:    "decode page",
			Err:        err,
		}
	}
	if p.PageSize == 0 {
		p.PageSize = req.PageSize
	}

	c.logger.Debug().
		Str("dataset", req.Dataset).
		Int("page", p.CurrentPage).
		Int("total_pages", p.TotalPages).
		Int("rows", len(p.Data)).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched page")

	return p, nil
}

// requestURL builds endpoint?<dataset>=..&page=..&page_size=.. keeping any
// query already present on the endpoint.
func (c *Client) requestURL(req Request) string {
	u, err := url.Parse(c.config.Endpoint)
	if err != nil {
		return c.config.Endpoint
	}
	q := u.Query()
	q.Set(c.config.DatasetParam, req.Dataset)
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("page_size", strconv.Itoa(req.PageSize))
	u.RawQuery = q.Encode()
	return u.String()
}

// Cache returns the page cache the client reads and writes.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
