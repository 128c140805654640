// internal/workers/location/reverse-geocode/config.go
package reversegeocode

import (
	"time"

	"petfinder/internal/common/config"
)

type Config struct {
	Enabled           bool
	BaseURL           string
	UserAgent         string
	Language          string
	Timeout           time.Duration
	RequestsPerSecond float64
	CacheTTL          time.Duration
	// Zoom is the Nominatim detail level; 18 resolves to building level.
	Zoom int
}

func LoadConfig() *Config {
	return &Config{
		Enabled:           true,
		UserAgent:         "petfinder/1.0",
		Language:          "en",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 1,
		CacheTTL:          10 * time.Minute,
		Zoom:              18,
	}
}

// ConfigFrom maps the application geocoding section onto the client config.
func ConfigFrom(c config.GeocodingConfig) *Config {
	cfg := LoadConfig()
	cfg.Enabled = c.Enabled
	cfg.BaseURL = c.BaseURL
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	if c.Language != "" {
		cfg.Language = c.Language
	}
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	if c.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = c.RequestsPerSecond
	}
	cfg.CacheTTL = config.GetDuration(c.CacheTTL)
	return cfg
}
