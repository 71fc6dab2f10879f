package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/weather-cli/internal/geo"
	"github.com/i474232898/weather-cli/internal/store"
	"github.com/i474232898/weather-cli/internal/weather/providers"
)

type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`
	OpenWeatherURL    string `validate:"required,url"`
	Lang              string `validate:"required"`

	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration `validate:"gt=0"`

	HistoryFile string `validate:"required"`

	GeolocationURL string `validate:"required,url"`
	GeocoderAPIKey string

	LogLevel string `validate:"required"`

	// Serve mode.
	Port string `validate:"required,numeric"`
	// In-memory history cap for serve mode without a file (0 = unlimited).
	StoreMaxHistory int `validate:"gte=0"`

	// Watch mode.
	WatchInterval time.Duration `validate:"gt=0"`
	WatchCity     string
}

var validate = validator.New()

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("[config] no .env file loaded: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherURL = getenvDefault("OPENWEATHER_URL", providers.DefaultOpenWeatherURL)
	cfg.Lang = getenvDefault("WEATHER_LANG", "ru")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "3s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.HistoryFile = getenvDefault("HISTORY_FILE", store.DefaultHistoryFile)
	cfg.GeolocationURL = getenvDefault("GEOLOCATION_URL", geo.DefaultURL)
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "warning"))

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 0)

	interval, err := getenvDuration("WATCH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.WatchInterval = interval
	cfg.WatchCity = strings.TrimSpace(os.Getenv("WATCH_CITY"))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
