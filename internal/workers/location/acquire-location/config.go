// internal/workers/location/acquire-location/config.go
package acquirelocation

type Config struct {
	// FreshPriority is the accuracy requested when no cached fix exists.
	FreshPriority Priority
}

func LoadConfig() *Config {
	return &Config{
		FreshPriority: PriorityHighAccuracy,
	}
}
