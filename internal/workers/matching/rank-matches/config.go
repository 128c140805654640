// internal/workers/matching/rank-matches/config.go
package rankmatches

type Config struct {
	// MaxDisplayed caps how many ranked candidates are handed to the
	// results screen. 0 shows all.
	MaxDisplayed int
}

func LoadConfig() *Config {
	return &Config{
		MaxDisplayed: 0,
	}
}
