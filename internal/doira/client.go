package doira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	acceptJSON = "application/json"

	// DefaultTimeout bounds every outbound request.
	DefaultTimeout = 10 * time.Second

	// maxRedirects matches the limit most HTTP user agents apply.
	maxRedirects = 30
)

// Endpoints holds the base URLs of the DOI resolution service and the RA APIs.
type Endpoints struct {
	DOI         string `mapstructure:"doi_url"`
	Crossref    string `mapstructure:"crossref_url"`
	CrossrefAPI string `mapstructure:"crossref_api_url"`
	DataCiteAPI string `mapstructure:"datacite_api_url"`
	MEDRAAPI    string `mapstructure:"medra_api_url"`
}

// DefaultEndpoints returns the public production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		DOI:         "https://doi.org",
		Crossref:    "https://doi.crossref.org",
		CrossrefAPI: "https://api.crossref.org",
		DataCiteAPI: "https://api.datacite.org",
		MEDRAAPI:    "https://api.medra.org",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	fill := func(v *string, def string) {
		*v = strings.TrimSuffix(*v, "/")
		if *v == "" {
			*v = def
		}
	}
	fill(&e.DOI, d.DOI)
	fill(&e.Crossref, d.Crossref)
	fill(&e.CrossrefAPI, d.CrossrefAPI)
	fill(&e.DataCiteAPI, d.DataCiteAPI)
	fill(&e.MEDRAAPI, d.MEDRAAPI)
	return e
}

// Client performs the HTTP calls shared by the router and every agency.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures the Client during construction.
type Option func(*clientConfig)

type clientConfig struct {
	endpoints  Endpoints
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	tracer     trace.Tracer
	timeout    time.Duration
}

// NewClient creates a Client for the public DOI services unless overridden
// by WithEndpoints.
func NewClient(opts ...Option) *Client {
	cfg := &clientConfig{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	// The caller's client is copied; the timeout applies to the copy only.
	httpClient := &http.Client{}
	if cfg.httpClient != nil {
		hc := *cfg.httpClient
		httpClient = &hc
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tracer := cfg.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("doira")
	}

	return &Client{
		endpoints:  cfg.endpoints.withDefaults(),
		httpClient: httpClient,
		userAgent:  cfg.userAgent,
		logger:     logger,
		tracer:     tracer,
	}
}

// WithEndpoints overrides service base URLs. Empty fields keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(cfg *clientConfig) { cfg.endpoints = e }
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) { cfg.httpClient = c }
}

// WithTimeout sets a timeout on the client's copy of the HTTP client. Zero
// leaves it unchanged.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) { cfg.userAgent = ua }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = l }
}

// WithTracer wraps every request in a span.
func WithTracer(t trace.Tracer) Option {
	return func(cfg *clientConfig) { cfg.tracer = t }
}

func (c *Client) newRequest(ctx context.Context, rawURL, accept string, query url.Values) (*http.Request, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// do sends req inside a span named after operation.
func (c *Client) do(ctx context.Context, operation string, req *http.Request) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, "doira."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WarnContext(ctx, "request failed", "operation", operation, "url", req.URL.String(), "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}
	c.logger.InfoContext(ctx, "URL", "operation", operation, "status", resp.StatusCode, "url", req.URL.String())
	return resp, nil
}

// fetch performs one GET and normalizes the outcome. It never returns an error.
func (c *Client) fetch(ctx context.Context, operation, rawURL, accept string, query url.Values) Result {
	req, err := c.newRequest(ctx, rawURL, accept, query)
	if err != nil {
		return Failure{Message: fmt.Sprintf("%s: create request: %v", operation, err)}
	}
	return Normalize(c.do(ctx, operation, req))
}

// document performs one GET and decodes the JSON body whatever the status,
// since the DOI service reports lookup misses as JSON documents too.
func (c *Client) document(ctx context.Context, operation, rawURL string) (any, error) {
	req, err := c.newRequest(ctx, rawURL, acceptJSON, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	resp, err := c.do(ctx, operation, req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", operation, err)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		msg := strings.TrimSpace(string(body))
		if resp.StatusCode == http.StatusOK || msg == "" {
			msg = err.Error()
		}
		return nil, newAPIError(operation, resp.StatusCode, msg)
	}
	return doc, nil
}

// handleURL is the handle-resolution API URL for a rendered DOI string.
func (c *Client) handleURL(doi string) string {
	return c.endpoints.DOI + "/api/handles/" + escapeDOI(doi)
}

// escapeDOI escapes each path segment of a DOI string so suffix characters
// such as '?', '#' or ';' stay in the path.
func escapeDOI(doi string) string {
	parts := strings.Split(doi, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
