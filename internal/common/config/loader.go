// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PETFINDER"

// Load reads configs/config.yaml, merges config.<env>.yaml on top, then
// applies environment overrides, defaults and validation.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv(envPrefix + "_APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the yaml files.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "petfinder")
	v.SetDefault("app.environment", "development")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("session.caller_id", "")
	v.SetDefault("session.display_name", "")
	v.SetDefault("comparison.base_url", "")
	v.SetDefault("comparison.api_key", "")
	v.SetDefault("comparison.timeout", 30000)
	v.SetDefault("comparison.max_image_bytes", 10<<20)
	v.SetDefault("geocoding.enabled", true)
	v.SetDefault("geocoding.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.user_agent", "petfinder/1.0")
	v.SetDefault("geocoding.language", "en")
	v.SetDefault("geocoding.timeout", 10000)
	v.SetDefault("geocoding.requests_per_second", 1.0)
	v.SetDefault("geocoding.cache_ttl", 600000)
	v.SetDefault("location.map_zoom", 15.0)
	v.SetDefault("records.base_url", "")
	v.SetDefault("records.api_key", "")
	v.SetDefault("records.timeout", 15000)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")
}

// loadEnvFile loads the first .env found walking up from the working
// directory to the module root.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars expands ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional unprefixed
// variables when nothing else set them.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Comparison.APIKey == "" {
		if val := os.Getenv("COMPARISON_API_KEY"); val != "" {
			cfg.Comparison.APIKey = val
		}
	}
	if cfg.Records.APIKey == "" {
		if val := os.Getenv("RECORDS_API_KEY"); val != "" {
			cfg.Records.APIKey = val
		}
	}
	if cfg.Session.CallerID == "" {
		if val := os.Getenv("CALLER_ID"); val != "" {
			cfg.Session.CallerID = val
		}
	}
}

// applyDefaults repairs zero values a yaml file may have set explicitly.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Comparison.Timeout <= 0 {
		cfg.Comparison.Timeout = 30000
	}
	if cfg.Comparison.MaxImageBytes <= 0 {
		cfg.Comparison.MaxImageBytes = 10 << 20
	}

	if cfg.Geocoding.Timeout <= 0 {
		cfg.Geocoding.Timeout = 10000
	}
	if cfg.Geocoding.RequestsPerSecond <= 0 {
		cfg.Geocoding.RequestsPerSecond = 1
	}
	if cfg.Geocoding.UserAgent == "" {
		cfg.Geocoding.UserAgent = "petfinder/1.0"
	}

	if cfg.Location.MapZoom <= 0 {
		cfg.Location.MapZoom = 15
	}

	if cfg.Records.Timeout <= 0 {
		cfg.Records.Timeout = 15000
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Comparison.BaseURL == "" {
		return fmt.Errorf("comparison.base_url is required")
	}
	if cfg.Geocoding.Enabled && cfg.Geocoding.BaseURL == "" {
		return fmt.Errorf("geocoding.base_url is required when geocoding is enabled")
	}
	if cfg.Location.MapZoom > 22 {
		return fmt.Errorf("location.map_zoom must be between 1 and 22")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
