// internal/workers/matching/compare-photo/config.go
package comparephoto

import (
	"time"

	"petfinder/internal/common/config"
)

type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxImageBytes int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		MaxImageBytes: 10 << 20,
	}
}

// ConfigFrom maps the application comparison section onto the client config.
func ConfigFrom(c config.ComparisonConfig) *Config {
	cfg := LoadConfig()
	cfg.BaseURL = c.BaseURL
	cfg.APIKey = c.APIKey
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	if c.MaxImageBytes > 0 {
		cfg.MaxImageBytes = c.MaxImageBytes
	}
	return cfg
}
