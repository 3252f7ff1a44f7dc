// Package config loads and validates the gateway's runtime settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	gwerrors "github.com/thedoughmonster/doughmonster-worker-sub001/errors"
)

// GatewayConfig holds all configuration for the gateway.
// Tags use mapstructure for Viper unmarshalling.
type GatewayConfig struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogPretty  bool   `mapstructure:"LOG_PRETTY"`

	// Vendor API access. The first four are required.
	VendorBaseURL        string `mapstructure:"VENDOR_BASE_URL"`
	VendorClientID       string `mapstructure:"VENDOR_CLIENT_ID"`
	VendorClientSecret   string `mapstructure:"VENDOR_CLIENT_SECRET"`
	RestaurantExternalID string `mapstructure:"RESTAURANT_EXTERNAL_ID"`
	VendorTokenPath      string `mapstructure:"VENDOR_TOKEN_PATH"`

	// Optional Redis-backed store; empty selects the in-memory store.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	// Upstream retry policy.
	FetchRetries          int `mapstructure:"FETCH_RETRIES"`
	FetchInitialBackoffMs int `mapstructure:"FETCH_INITIAL_BACKOFF_MS"`
	FetchMaxBackoffMs     int `mapstructure:"FETCH_MAX_BACKOFF_MS"`
	FetchTimeoutMs        int `mapstructure:"FETCH_TIMEOUT_MS"`

	// Composition limits.
	CompositionCacheCapacity int `mapstructure:"COMPOSITION_CACHE_CAPACITY"`
	ComposeTimeBudgetMs      int `mapstructure:"COMPOSE_TIME_BUDGET_MS"`
	ComposeOrderLimit        int `mapstructure:"COMPOSE_ORDER_LIMIT"`
}

// TokenURL resolves the full vendor token endpoint URL.
func (c *GatewayConfig) TokenURL() string {
	return strings.TrimRight(c.VendorBaseURL, "/") + c.VendorTokenPath
}

// ComposeTimeBudget converts the configured budget to a duration.
func (c *GatewayConfig) ComposeTimeBudget() time.Duration {
	return time.Duration(c.ComposeTimeBudgetMs) * time.Millisecond
}

var requiredKeys = []string{
	"VENDOR_BASE_URL",
	"VENDOR_CLIENT_ID",
	"VENDOR_CLIENT_SECRET",
	"RESTAURANT_EXTERNAL_ID",
}

// Load reads configuration from file, environment variables, and
// defaults, then validates the required settings.
func Load() (*GatewayConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/doughmonster/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("VENDOR_TOKEN_PATH", "/authentication/v1/authentication/login")
	v.SetDefault("FETCH_RETRIES", 2)
	v.SetDefault("FETCH_INITIAL_BACKOFF_MS", 250)
	v.SetDefault("FETCH_MAX_BACKOFF_MS", 5000)
	v.SetDefault("FETCH_TIMEOUT_MS", 10000)
	v.SetDefault("COMPOSITION_CACHE_CAPACITY", 128)
	v.SetDefault("COMPOSE_TIME_BUDGET_MS", 10000)
	v.SetDefault("COMPOSE_ORDER_LIMIT", 100)

	// Required settings have no defaults; they must come from the
	// environment or a config file.
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg GatewayConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing required setting at once.
func (c *GatewayConfig) Validate() error {
	var missing []string
	if c.VendorBaseURL == "" {
		missing = append(missing, "VENDOR_BASE_URL")
	}
	if c.VendorClientID == "" {
		missing = append(missing, "VENDOR_CLIENT_ID")
	}
	if c.VendorClientSecret == "" {
		missing = append(missing, "VENDOR_CLIENT_SECRET")
	}
	if c.RestaurantExternalID == "" {
		missing = append(missing, "RESTAURANT_EXTERNAL_ID")
	}
	if len(missing) > 0 {
		return gwerrors.NewConfigError(missing...)
	}
	return nil
}
