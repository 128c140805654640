// internal/workers/location/permission-gate/config.go
package permissiongate

type Config struct {
	// AllowPrompt lets Ensure show the platform consent dialog. When false
	// an ungranted capability is treated as not grantable.
	AllowPrompt bool
}

func LoadConfig() *Config {
	return &Config{
		AllowPrompt: true,
	}
}
