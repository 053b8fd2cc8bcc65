package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	AppEnv       string `yaml:"app_env"`
	ServerPort   string `yaml:"server_port"`
	FeedURL      string `yaml:"feed_url"`
	RedisURL     string `yaml:"redis_url"`
	UserAgent    string `yaml:"user_agent"`
	Timeout      string `yaml:"timeout"`
	PollInterval string `yaml:"poll_interval"`
}

// LoadFromFile loads config from a YAML file. feed_url is required.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.FeedURL == "" {
		return nil, ErrMissingFeedURL
	}
	c := &Config{
		AppEnv:       f.AppEnv,
		ServerPort:   f.ServerPort,
		FeedURL:      f.FeedURL,
		RedisURL:     f.RedisURL,
		UserAgent:    f.UserAgent,
		Timeout:      30 * time.Second,
		PollInterval: time.Minute,
	}
	if c.AppEnv == "" {
		c.AppEnv = "prod"
	}
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.UserAgent == "" {
		c.UserAgent = "Telehaven/1.0"
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			c.Timeout = d
		}
	}
	if f.PollInterval != "" {
		if d, err := time.ParseDuration(f.PollInterval); err == nil {
			c.PollInterval = d
		}
	}
	return c, nil
}
