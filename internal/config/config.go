// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      int    `env:"CHOREWHEEL_PORT" envDefault:"8080"`
	DBPath    string `env:"CHOREWHEEL_DB_PATH" envDefault:"chorewheel.db"`
	LogLevel  string `env:"CHOREWHEEL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CHOREWHEEL_LOG_FORMAT" envDefault:"text"`

	// BaseURL is used to build links in reminder emails and push payloads.
	BaseURL string `env:"CHOREWHEEL_BASE_URL" envDefault:"http://localhost:8080"`

	// Postmark email delivery. Leave the token empty to disable email.
	PostmarkToken string `env:"POSTMARK_SERVER_TOKEN"`
	FromEmail     string `env:"CHOREWHEEL_FROM_EMAIL" envDefault:"chores@localhost"`

	// Web push. Leave the keys empty to disable push notifications.
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `env:"VAPID_SUBSCRIBER" envDefault:"mailto:chores@localhost"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
