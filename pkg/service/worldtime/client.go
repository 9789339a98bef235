package worldtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/utils/safe"
)

const (
	// DefaultBaseURL is the api-ninjas worldtime endpoint
	DefaultBaseURL = "https://api.api-ninjas.com/v1/worldtime"

	// DefaultTimeout is the hard per-call deadline for a lookup
	DefaultTimeout = 10 * time.Second
)

// Client looks up the current local time of a city
type Client interface {
	// Lookup resolves the current time for a city. Returns
	// model.ErrCityNotFound when the provider does not know the city;
	// any other failure is transient and may be retried.
	Lookup(ctx context.Context, city string) (*model.CityTime, error)
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL overrides the provider endpoint (used in tests)
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// New creates a worldtime client backed by the api-ninjas API
func New(apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, goerr.New("worldtime API key is required")
	}

	c := &client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Lookup resolves the current time for a city
func (c *client) Lookup(ctx context.Context, city string) (*model.CityTime, error) {
	if city == "" {
		return nil, goerr.Wrap(model.ErrCityNotFound, "city name is empty")
	}

	reqURL := c.baseURL + "?city=" + url.QueryEscape(city)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build worldtime request", goerr.V("city", city))
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "worldtime request failed", goerr.V("city", city))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read worldtime response", goerr.V("city", city))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The provider answers 4xx for unknown cities; not retryable
		return nil, goerr.Wrap(model.ErrCityNotFound, "worldtime lookup rejected",
			goerr.V("city", city), goerr.V("status", resp.StatusCode))
	default:
		return nil, goerr.New("worldtime lookup failed",
			goerr.V("city", city), goerr.V("status", resp.StatusCode))
	}

	var result model.CityTime
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode worldtime response", goerr.V("city", city))
	}

	if result.Datetime == "" || result.Timezone == "" {
		return nil, goerr.Wrap(model.ErrCityNotFound, "worldtime response has no time data",
			goerr.V("city", city))
	}

	return &result, nil
}
