// internal/workers/location/last-seen-location/config.go
package lastseenlocation

import (
	"petfinder/internal/common/config"
)

type Config struct {
	// MapZoom is the fixed zoom the camera animates to on every new fix.
	MapZoom    float64
	LoopBuffer int
}

func LoadConfig() *Config {
	return &Config{
		MapZoom:    16,
		LoopBuffer: 16,
	}
}

func ConfigFrom(c config.LocationConfig) *Config {
	cfg := LoadConfig()
	if c.MapZoom > 0 {
		cfg.MapZoom = c.MapZoom
	}
	return cfg
}
