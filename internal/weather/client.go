// Package weather wraps the OpenWeather current-conditions API for the
// dashboard widget.
package weather

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Client calls the OpenWeather current-weather endpoint.
type Client struct {
	apiKey     string
	lat, lon   float64
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string, lat, lon float64) *Client {
	return &Client{
		apiKey:     apiKey,
		lat:        lat,
		lon:        lon,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL overrides the API host, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Conditions is the slimmed-down payload the dashboard renders.
type Conditions struct {
	IconCode    string `json:"icon_code"`
	Description string `json:"description"`
	Temperature int    `json:"temperature"`
}

// Current fetches the current conditions for the configured coordinates
// in imperial units.
func (c *Client) Current() (*Conditions, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(c.lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "imperial")

	resp, err := c.httpClient.Get(c.baseURL + "/data/2.5/weather?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned %d", resp.StatusCode)
	}

	var payload struct {
		Weather []struct {
			Icon        string `json:"icon"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("weather response missing conditions")
	}

	return &Conditions{
		IconCode:    payload.Weather[0].Icon,
		Description: capitalize(payload.Weather[0].Description),
		Temperature: int(math.Round(payload.Main.Temp)),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
