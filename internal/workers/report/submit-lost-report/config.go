// internal/workers/report/submit-lost-report/config.go
package submitlostreport

import (
	"time"

	"petfinder/internal/common/config"
)

type Config struct {
	// ReporterID is the caller identity stamped on every report.
	ReporterID string
	// NotifyReporter sends a lost_report_created confirmation after the
	// record is stored.
	NotifyReporter bool
	Timeout        time.Duration
	// NotifyTimeout bounds the detached notification call.
	NotifyTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		NotifyReporter: true,
		Timeout:        10 * time.Second,
		NotifyTimeout:  5 * time.Second,
	}
}

func ConfigFrom(c *config.Config) *Config {
	cfg := LoadConfig()
	if c != nil {
		cfg.ReporterID = c.Session.CallerID
		if c.Records.Timeout > 0 {
			cfg.Timeout = config.GetDuration(c.Records.Timeout)
		}
	}
	return cfg
}
