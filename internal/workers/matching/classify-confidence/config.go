// internal/workers/matching/classify-confidence/config.go
package classifyconfidence

// Config holds the tier boundaries. Scores at or above a boundary belong
// to the higher tier.
type Config struct {
	HighThreshold   float64
	MediumThreshold float64
}

func LoadConfig() *Config {
	return &Config{
		HighThreshold:   0.80,
		MediumThreshold: 0.60,
	}
}
