package here

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// Default API endpoints.
const (
	DefaultGeocodeURL = "https://geocode.search.hereapi.com/v1/geocode"
	DefaultTransitURL = "https://transit.router.hereapi.com/v8/routes"
	DefaultRouterURL  = "https://router.hereapi.com/v8/routes"
)

// DefaultTimeout bounds every HTTP request.
const DefaultTimeout = 15 * time.Second

// Ensure Client implements the interface.
var _ driven.TransitLookup = (*Client)(nil)

// Config configures a Client.
type Config struct {
	APIKey string
	Mode   domain.TransitMode

	// RequestsPerSecond throttles all HERE calls. Zero uses domain.DefaultRequestsPerSecond.
	RequestsPerSecond float64

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	// Endpoint overrides, mainly for tests.
	GeocodeURL string
	TransitURL string
	RouterURL  string
}

// Client looks up travel durations.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	coords map[string]position
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: transit.api_key is required", domain.ErrInvalidInput)
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.ModeTransit
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown transit mode %q", domain.ErrInvalidInput, cfg.Mode)
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = domain.DefaultRequestsPerSecond
	}
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultGeocodeURL
	}
	if cfg.TransitURL == "" {
		cfg.TransitURL = DefaultTransitURL
	}
	if cfg.RouterURL == "" {
		cfg.RouterURL = DefaultRouterURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		coords:  make(map[string]position),
	}, nil
}

// Mode returns the configured transit mode.
func (c *Client) Mode() domain.TransitMode {
	return c.cfg.Mode
}

// getJSON performs a rate-limited GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("apiKey", c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("here: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the API key; report the endpoint only.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("here: GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(endpoint, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("here: decode %s: %w", endpoint, err)
	}
	return nil
}
