// Package openweather is a minimal client for the OpenWeather OneCall API,
// covering only the fields the frame service consumes.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"

// Client wraps an HTTP client configured for the OneCall endpoint.
type Client struct {
	token      string
	units      string
	httpClient *http.Client
	baseURL    string // overridable for testing
}

// NewClient creates a Client with an explicit timeout instead of http.DefaultClient.
func NewClient(token, units string, timeout time.Duration) *Client {
	return &Client{
		token: token,
		units: units,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests and config.
func (c *Client) SetBaseURL(u string) {
	if u != "" {
		c.baseURL = u
	}
}

// Fetch requests the OneCall forecast for the given coordinates.
func (c *Client) Fetch(ctx context.Context, lat, long float64) (*OneCallResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(long, 'f', -1, 64))
	q.Set("units", c.units)
	q.Set("appid", c.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return nil, fmt.Errorf("API error (HTTP %d): unable to decode body", resp.StatusCode)
		}
		return nil, fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, apiErr.Message)
	}

	var oc OneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&oc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(oc.Hourly) == 0 {
		return nil, fmt.Errorf("response has no hourly forecast")
	}

	return &oc, nil
}
