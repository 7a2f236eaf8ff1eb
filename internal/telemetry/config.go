package telemetry

import (
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config controls whether telemetry runs. Disabled by default; users opt in.
type Config struct {
	Enabled  bool
	APIKey   string
	Endpoint string
}

// LoadConfig reads telemetry settings from viper (telemetry.* keys, bound
// to TESTWING_TELEMETRY_* env vars by the root command).
func LoadConfig() Config {
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.endpoint", "https://us.i.posthog.com")

	return Config{
		Enabled:  viper.GetBool("telemetry.enabled"),
		APIKey:   viper.GetString("telemetry.apiKey"),
		Endpoint: viper.GetString("telemetry.endpoint"),
	}
}

// NewClient builds a client for the config: a PostHog client when enabled
// and configured, otherwise a no-op. A fresh anonymous ID is generated per
// run so events are never linkable across runs.
func NewClient(cfg Config, version string) Client {
	if !cfg.Enabled {
		return NoopClient{}
	}

	client, err := NewPostHogClient(ClientConfig{
		APIKey:      cfg.APIKey,
		Endpoint:    cfg.Endpoint,
		AnonymousID: uuid.NewString(),
		Version:     version,
	})
	if err != nil {
		return NoopClient{}
	}
	return client
}
