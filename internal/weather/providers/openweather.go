package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-cli/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOpenWeatherURL is the current-weather endpoint of OpenWeatherMap.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	lang    string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider builds a provider. An empty baseURL selects
// DefaultOpenWeatherURL; the timeout is whatever client carries.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL, lang string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		lang:    lang,
		client:  client,
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Fetch requests current weather for city in metric units. The decoded
// payload is returned verbatim; OpenWeatherMap answers unknown or empty city
// names with a 4xx error body, which is returned as well so that parsing
// reports the missing fields.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.RawResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if p.lang != "" {
		values.Set("lang", p.lang)
	}

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(p.client, p.circuit, req, openWeatherReadable)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload weather.RawResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode openweather response: %w", err)
	}
	return payload, nil
}

func openWeatherReadable(status int) bool {
	if status >= 200 && status < 300 {
		return true
	}
	return status == http.StatusBadRequest || status == http.StatusNotFound
}
