package config

import (
	"errors"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrMissingFeedURL is returned when no channel feed URL is configured.
var ErrMissingFeedURL = errors.New("FEED_URL is required")

// Config holds application configuration (feed, store and server settings).
type Config struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"prod"`
	ServerPort   string        `envconfig:"PORT" default:"8080"`
	FeedURL      string        `envconfig:"FEED_URL"`
	RedisURL     string        `envconfig:"REDIS_URL"`
	UserAgent    string        `envconfig:"FETCHER_USER_AGENT" default:"Telehaven/1.0"`
	Timeout      time.Duration `envconfig:"FETCHER_TIMEOUT" default:"30s"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1m"`
}

// Load builds config from environment variables.
// If FEED_URL is not set, Load tries to load .env.local and .env from the
// current directory first. FEED_URL is required; everything else is optional.
func Load() (*Config, error) {
	if os.Getenv("FEED_URL") == "" {
		loadEnvFiles()
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if c.FeedURL == "" {
		return nil, ErrMissingFeedURL
	}
	return &c, nil
}
