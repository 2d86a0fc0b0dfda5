package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/doyensec/safeurl"
	"golang.org/x/time/rate"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/pkg/config"
)

// Client proxies OpenWeather. Outbound requests go through an SSRF-safe
// HTTP client and a shared client-side limiter so a burst of portal
// traffic cannot exhaust the upstream quota.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
}

func NewClient(cfg config.WeatherConfig) *Client {
	safeConfig := safeurl.GetConfigBuilder().
		SetTimeout(10 * time.Second).
		SetAllowedSchemes("https").
		SetAllowedPorts(443).
		Build()

	return &Client{
		httpClient: safeurl.Client(safeConfig).Client,
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Current fetches current conditions for a free-text location.
func (c *Client) Current(ctx context.Context, location string) (json.RawMessage, error) {
	return c.fetch(ctx, "/weather", location)
}

// Forecast fetches the 5-day forecast for a free-text location.
func (c *Client) Forecast(ctx context.Context, location string) (json.RawMessage, error) {
	return c.fetch(ctx, "/forecast", location)
}

func (c *Client) fetch(ctx context.Context, path, location string) (json.RawMessage, error) {
	if location == "" {
		return nil, domain.Validationf("location is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.RawMessage(body), nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: location not found", domain.ErrNotFound)
	default:
		return nil, fmt.Errorf("weather upstream returned status %d", resp.StatusCode)
	}
}
