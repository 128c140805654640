// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Session    SessionConfig    `mapstructure:"session"`
	Comparison ComparisonConfig `mapstructure:"comparison"`
	Geocoding  GeocodingConfig  `mapstructure:"geocoding"`
	Location   LocationConfig   `mapstructure:"location"`
	Records    RecordsConfig    `mapstructure:"records"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SessionConfig carries the signed-in caller. It is handed explicitly to
// every collaborator that addresses records or notifications to a user.
type SessionConfig struct {
	CallerID    string `mapstructure:"caller_id"`
	DisplayName string `mapstructure:"display_name"`
}

// --- Remote Services ---

// ComparisonConfig configures the pet-photo comparison service.
type ComparisonConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
	MaxImageBytes int64  `mapstructure:"max_image_bytes"`
}

// GeocodingConfig configures the reverse geocoder. Disabled means the
// platform has no geocoder and addresses fall back to coordinates.
type GeocodingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	BaseURL           string  `mapstructure:"base_url"`
	UserAgent         string  `mapstructure:"user_agent"`
	Language          string  `mapstructure:"language"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	CacheTTL          int     `mapstructure:"cache_ttl"` // milliseconds, 0 disables
}

// LocationConfig holds map and acquisition settings.
type LocationConfig struct {
	MapZoom float64 `mapstructure:"map_zoom"`
}

// RecordsConfig configures the generic record repository and notification sink.
type RecordsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// MetricsConfig controls the prometheus endpoint of the developer CLI.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
