// Package osmclient fetches study area boundaries from Nominatim and road
// networks from the Overpass API, or reads them from local OSM files.
package osmclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/resilience"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/store"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	defaultOverpassURL  = "https://overpass-api.de/api/interpreter"
	defaultUserAgent    = "betweenness-centrality/1.0"
)

// Client resolves places and downloads their road networks.
type Client interface {
	// Geocode resolves a place name to its boundary polygon.
	Geocode(ctx context.Context, place string) (*Place, error)

	// Network downloads the drivable ways and their nodes inside bound.
	Network(ctx context.Context, bound orb.Bound) (*osm.OSM, error)
}

// Place is a geocoded study area.
type Place struct {
	Query       string
	DisplayName string
	// Boundary is an orb.Polygon or orb.MultiPolygon in lon/lat.
	Boundary orb.Geometry
	Bound    orb.Bound
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client for Nominatim and Overpass.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit shared by both services.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires an identifying value, so an empty ua keeps the default.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithEndpoints overrides the Nominatim and Overpass URLs. Empty values keep
// the defaults.
func WithEndpoints(nominatimURL, overpassURL string) Option {
	return func(c *client) {
		if nominatimURL != "" {
			c.nominatimURL = nominatimURL
		}
		if overpassURL != "" {
			c.overpassURL = overpassURL
		}
	}
}

// WithQueryTimeout sets the server-side Overpass timeout in seconds.
func WithQueryTimeout(secs int) Option {
	return func(c *client) {
		c.queryTimeout = secs
	}
}

// WithCache stores successful responses for ttl.
func WithCache(cache store.Cache, ttl time.Duration) Option {
	return func(c *client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(attempts, initialBackoffMs int) Option {
	return func(c *client) {
		c.retryAttempts = attempts
		c.retryBackoffMs = initialBackoffMs
	}
}

type client struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	userAgent      string
	nominatimURL   string
	overpassURL    string
	queryTimeout   int
	cache          store.Cache
	cacheTTL       time.Duration
	retryAttempts  int
	retryBackoffMs int
}

// NewClient creates a new Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		limiter:      rate.NewLimiter(1, 1), // public Nominatim allows 1 req/s
		userAgent:    defaultUserAgent,
		nominatimURL: defaultNominatimURL,
		overpassURL:  defaultOverpassURL,
		queryTimeout: 180,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetch performs req through the cache, the rate limiter and the retry
// policy, returning the body of a 200 response.
func (c *client) fetch(ctx context.Context, service, method, url string, payload []byte, contentType string) ([]byte, error) {
	log := zap.L().With(zap.String("component", "osmclient"), zap.String("service", service))

	key := store.Key(service, method, url, string(payload))
	if c.cache != nil {
		body, err := c.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache read failed", zap.Error(err))
		} else if body != nil {
			log.Debug("cache hit", zap.String("url", url))
			return body, nil
		}
	}

	policy := resilience.NewPolicy(service, c.retryAttempts, c.retryBackoffMs)
	body, err := resilience.DoVal(ctx, policy, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "osmclient: %s rate limit", service)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, eris.Wrapf(err, "osmclient: %s build request", service)
		}
		req.Header.Set("User-Agent", c.userAgent)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "osmclient: %s request", service)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return nil, eris.Wrapf(resilience.NewStatusError(service, resp), "osmclient: %s", service)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrapf(err, "osmclient: %s read body", service)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, service, body, c.cacheTTL); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}
	log.Debug("fetched", zap.String("url", url), zap.Int("bytes", len(body)))
	return body, nil
}
