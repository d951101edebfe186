package sessiond

import (
	"time"

	"github.com/imdario/mergo"
	"github.com/minebase/yggdrasil/internal/pkg/config"
	"github.com/minebase/yggdrasil/pkg/yggdrasil"
)

type APIConfig struct {
	Bind           string   `mapstructure:"bind"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	BearerSecret   string   `mapstructure:"bearerSecret"`
}

type SessionServerConfig struct {
	BaseURL        string        `mapstructure:"baseURL"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepSchedule string        `mapstructure:"sweepSchedule"`
	Redis         redisConfig   `mapstructure:"redis"`
}

type WebhookConfig struct {
	ID            string        `mapstructure:"id"`
	URL           string        `mapstructure:"url"`
	AllowedTopics []string      `mapstructure:"allowedTopics"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type Config struct {
	API           APIConfig           `mapstructure:"api"`
	SessionServer SessionServerConfig `mapstructure:"sessionServer"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Webhooks      []WebhookConfig     `mapstructure:"webhooks"`
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Bind:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		SessionServer: SessionServerConfig{
			BaseURL:        yggdrasil.DefaultSessionServerURL,
			RequestTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			TTL:           5 * time.Minute,
			SweepSchedule: "@every 5m",
			Redis: redisConfig{
				TTL: 5 * time.Minute,
			},
		},
	}
}

// NewConfig decodes the raw config map and fills unset fields with
// defaults.
func NewConfig(data map[string]any) (Config, error) {
	cfg := Config{}
	if err := config.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	if err := mergo.Merge(&cfg, defaultConfig()); err != nil {
		return Config{}, err
	}

	for i := range cfg.Webhooks {
		if cfg.Webhooks[i].Timeout <= 0 {
			cfg.Webhooks[i].Timeout = 5 * time.Second
		}
	}

	return cfg, nil
}
