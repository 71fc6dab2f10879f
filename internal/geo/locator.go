// Package geo resolves the caller's approximate city from its public IP.
package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kelvins/geocoder"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/weather-cli/internal/weather"
)

// DefaultURL answers with the caller's own address when queried without parameters.
const DefaultURL = "https://ipinfo.io/json"

// ReverseFunc maps coordinates to a city name.
type ReverseFunc func(lat, lon float64) (string, error)

// IPLocator implements weather.Locator against an ipinfo-style JSON endpoint.
type IPLocator struct {
	client  *resty.Client
	url     string
	reverse ReverseFunc
}

type ipInfo struct {
	City string `json:"city"`
	Loc  string `json:"loc"`
}

// NewIPLocator creates a locator. reverse may be nil; it is only consulted
// when the provider knows the coordinates but not the city.
func NewIPLocator(url string, timeout time.Duration, reverse ReverseFunc) *IPLocator {
	if url == "" {
		url = DefaultURL
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &IPLocator{
		client:  client,
		url:     url,
		reverse: reverse,
	}
}

// ResolveCity queries the provider once; there is no retry.
func (l *IPLocator) ResolveCity(ctx context.Context) (string, error) {
	var info ipInfo
	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&info).
		ForceContentType("application/json").
		Get(l.url)
	if err != nil {
		return "", weather.ClassifyTransportError(err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: geolocation returned status %d", weather.ErrLocationUnavailable, resp.StatusCode())
	}

	if city := strings.TrimSpace(info.City); city != "" {
		return city, nil
	}

	if l.reverse == nil || info.Loc == "" {
		return "", fmt.Errorf("%w: provider returned no city", weather.ErrLocationUnavailable)
	}

	lat, lon, err := parseLoc(info.Loc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", weather.ErrLocationUnavailable, err)
	}

	log.Debugf("[geo] no city in ip lookup, reverse geocoding %f,%f", lat, lon)
	city, err := l.reverse(lat, lon)
	if err != nil {
		return "", fmt.Errorf("%w: reverse geocoding: %v", weather.ErrLocationUnavailable, err)
	}
	return city, nil
}

// parseLoc splits a "lat,lon" pair.
func parseLoc(loc string) (float64, float64, error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinates %q", loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", parts[1])
	}
	return lat, lon, nil
}

// GoogleReverse returns a ReverseFunc backed by the Google geocoding API.
// It returns nil when apiKey is empty. The geocoder package reads its key from
// a package variable, so the key is set once here rather than on every call.
func GoogleReverse(apiKey string) ReverseFunc {
	if apiKey == "" {
		return nil
	}
	geocoder.ApiKey = apiKey

	return func(lat, lon float64) (string, error) {
		addresses, err := geocoder.GeocodingReverse(geocoder.Location{
			Latitude:  lat,
			Longitude: lon,
		})
		if err != nil {
			return "", err
		}
		for _, a := range addresses {
			if a.City != "" {
				return a.City, nil
			}
		}
		return "", fmt.Errorf("no city among %d addresses", len(addresses))
	}
}
