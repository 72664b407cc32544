// Package config loads console configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the console server configuration
type Config struct {
	Listen   string
	LogLevel string

	Backend struct {
		BaseURL string
		Token   string
		Timeout time.Duration
	}

	SQLitePath string

	NATS struct {
		URL            string
		MaxReconnects  int
		ReconnectWait  time.Duration
		ConnectTimeout time.Duration
	}
}

// Load reads the configuration from the given directory. Environment
// variables prefixed SMARTNOTIFY_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	v.SetEnvPrefix("smartnotify")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.listen", ":8085")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("store.sqlite_path", "smartnotify.db")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("nats.connect_timeout", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Listen:     v.GetString("server.listen"),
		LogLevel:   v.GetString("server.log_level"),
		SQLitePath: v.GetString("store.sqlite_path"),
	}
	cfg.Backend.BaseURL = v.GetString("backend.base_url")
	cfg.Backend.Token = v.GetString("backend.token")
	cfg.Backend.Timeout = v.GetDuration("backend.timeout")
	cfg.NATS.URL = v.GetString("nats.url")
	cfg.NATS.MaxReconnects = v.GetInt("nats.max_reconnects")
	cfg.NATS.ReconnectWait = v.GetDuration("nats.reconnect_wait")
	cfg.NATS.ConnectTimeout = v.GetDuration("nats.connect_timeout")

	return cfg, nil
}
