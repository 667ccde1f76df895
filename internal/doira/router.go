package doira

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"doitip/internal/identifier"
)

// Router maps RA names to adapters and talks to the DOI resolution service.
type Router struct {
	client *Client
	// raCache maps a lowercased DOI string to its Kind; nil disables caching.
	raCache *gocache.Cache
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRACache remembers which agency governs a DOI for ttl. A ttl of zero
// or less disables the cache.
func WithRACache(ttl time.Duration) RouterOption {
	return func(r *Router) {
		if ttl > 0 {
			r.raCache = gocache.New(ttl, 2*ttl)
		}
	}
}

// NewRouter builds a router whose adapters share c.
func NewRouter(c *Client, opts ...RouterOption) *Router {
	r := &Router{client: c}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Agency returns the adapter registered under name, ignoring case.
func (r *Router) Agency(name string) (Agency, error) {
	k, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return k.New(r.client)
}

// List returns the supported agencies in listing order.
func (r *Router) List() []Kind { return Kinds() }

// LookupRA returns the DOI service's RA document for id: a JSON array of
// {"DOI": ..., "RA": ...} objects.
func (r *Router) LookupRA(ctx context.Context, id identifier.Identifier) (any, error) {
	doi, err := id.DOIString()
	if err != nil {
		return nil, err
	}
	return r.client.document(ctx, "ra lookup", r.client.endpoints.DOI+"/doiRA/"+escapeDOI(doi))
}

// DOIRA asks the DOI service which agency governs id and returns its adapter.
func (r *Router) DOIRA(ctx context.Context, id identifier.Identifier) (Agency, error) {
	key := strings.ToLower(id.String())
	if r.raCache != nil {
		if v, found := r.raCache.Get(key); found {
			if k, ok := v.(Kind); ok {
				r.client.logger.DebugContext(ctx, "ra cache hit", "doi", id.String(), "ra", k.String())
				return k.New(r.client)
			}
		}
	}

	doc, err := r.LookupRA(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("ra lookup: expected a JSON array, got %T", doc)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("ra lookup: empty response for %s", id)
	}
	var name string
	if first, ok := entries[0].(map[string]any); ok {
		name, _ = first["RA"].(string)
	}
	r.client.logger.DebugContext(ctx, "ra lookup", "doi", id.String(), "ra", name)
	a, err := r.Agency(name)
	if err != nil {
		return nil, err
	}
	if r.raCache != nil {
		r.raCache.SetDefault(key, a.Kind())
	}
	return a, nil
}

// Handle returns the DOI service's handle record for id as decoded JSON.
func (r *Router) Handle(ctx context.Context, id identifier.Identifier) (any, error) {
	doi, err := id.DOIString()
	if err != nil {
		return nil, err
	}
	return r.client.document(ctx, "handle", r.client.handleURL(doi))
}

// Hop is one request in a redirect chain.
type Hop struct {
	URL       string  `json:"url" yaml:"url"`
	Status    int     `json:"status" yaml:"status"`
	ElapsedMS float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Resolve requests id from the DOI resolver and follows redirects by hand,
// timing each hop. Response bodies are closed unread. The last hop is the
// final target (or the first non-redirect response).
func (r *Router) Resolve(ctx context.Context, id identifier.Identifier, accept string) ([]Hop, error) {
	doi, err := id.DOIString()
	if err != nil {
		return nil, err
	}
	if accept == "" {
		accept = "*/*"
	}

	hc := *r.client.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	c := *r.client
	c.httpClient = &hc

	target := r.client.endpoints.DOI + "/" + escapeDOI(doi)
	var hops []Hop
	for range maxRedirects + 1 {
		req, err := c.newRequest(ctx, target, accept, nil)
		if err != nil {
			return hops, fmt.Errorf("resolve: create request: %w", err)
		}
		start := time.Now()
		resp, err := c.do(ctx, "resolve", req)
		if err != nil {
			return hops, fmt.Errorf("resolve: %w", err)
		}
		resp.Body.Close()
		hops = append(hops, Hop{
			URL:       target,
			Status:    resp.StatusCode,
			ElapsedMS: float64(time.Since(start).Microseconds()) / 1000.0,
		})

		if !isRedirect(resp.StatusCode) {
			return hops, nil
		}
		next, err := resp.Location()
		if err != nil {
			return hops, nil
		}
		target = next.String()
	}
	return hops, fmt.Errorf("resolve: stopped after %d redirects", maxRedirects)
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
