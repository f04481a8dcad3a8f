// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nolanv/doorstep/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// GeocoderBaseURL is the Nominatim-compatible search endpoint.
	// Defaults to the public OpenStreetMap instance.
	GeocoderBaseURL string

	// GeocoderCountry restricts geocoding lookups to one ISO country code.
	// Defaults to "us".
	GeocoderCountry string

	// GeocoderUserAgent identifies this deployment to the geocoding service,
	// as its usage policy requires. Defaults to "doorstep/1.0".
	GeocoderUserAgent string

	// DevicePosition is a fixed fallback position used when a request carries
	// no device coordinates. Set DEVICE_LAT and DEVICE_LNG together to enable;
	// nil when unset.
	DevicePosition *domain.LatLng
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		GeocoderBaseURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderCountry:   getEnv("GEOCODER_COUNTRY", "us"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "doorstep/1.0"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	device, err := devicePosition()
	if err != nil {
		return Config{}, err
	}
	cfg.DevicePosition = device

	return cfg, nil
}

// devicePosition parses the optional DEVICE_LAT/DEVICE_LNG pair. Setting one
// without the other is a configuration error rather than a silent half-value.
func devicePosition() (*domain.LatLng, error) {
	latStr, lngStr := os.Getenv("DEVICE_LAT"), os.Getenv("DEVICE_LNG")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, fmt.Errorf("DEVICE_LAT and DEVICE_LNG must be set together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("DEVICE_LAT: %w", err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("DEVICE_LNG: %w", err)
	}
	return &domain.LatLng{Lat: lat, Lng: lng}, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
