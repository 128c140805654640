// internal/workers/matching/submit-photo-match/config.go
package submitphotomatch

import (
	"time"

	"petfinder/internal/common/config"
)

type Config struct {
	// CallerID addresses match alerts. Empty disables them.
	CallerID string
	// NotifyOnHighConfidence sends a match_found notification when the top
	// candidate lands in the HIGH tier.
	NotifyOnHighConfidence bool
	// NotifyTimeout bounds each alert delivery. Close waits for it.
	NotifyTimeout time.Duration
	LoopBuffer    int
}

func LoadConfig() *Config {
	return &Config{
		NotifyOnHighConfidence: true,
		NotifyTimeout:          5 * time.Second,
		LoopBuffer:             16,
	}
}

// ConfigFrom takes the caller identity from the session section.
func ConfigFrom(c *config.Config) *Config {
	cfg := LoadConfig()
	if c != nil {
		cfg.CallerID = c.Session.CallerID
	}
	return cfg
}
