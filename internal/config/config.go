// Package config loads and validates the tokengate service configuration.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address"`

	// ReadTimeout bounds reading the full request.
	ReadTimeout Duration `yaml:"readTimeout,omitempty"`

	// WriteTimeout bounds writing the full response.
	WriteTimeout Duration `yaml:"writeTimeout,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// Format is the log output format (json, console).
	Format string `yaml:"format"`
}

// AuthConfig configures token validation and the key cache.
type AuthConfig struct {
	// KeystoreURL is the JWKS endpoint to fetch verification keys from.
	KeystoreURL string `yaml:"keystoreURL"`

	// RefreshInterval is the interval between key refreshes after a
	// successful fetch.
	RefreshInterval Duration `yaml:"refreshInterval,omitempty"`

	// RetryInterval is the interval before retrying after a failed fetch.
	RetryInterval Duration `yaml:"retryInterval,omitempty"`

	// Checks is the list of claim checks to run on every token.
	Checks []string `yaml:"checks,omitempty"`

	// Issuer is the expected iss claim value; required when the iss
	// check is enabled.
	Issuer string `yaml:"issuer,omitempty"`
}

// Default refresh scheduling, matching the key cache defaults.
const (
	defaultRefreshInterval = 24 * time.Hour
	defaultRetryInterval   = time.Hour
)

// knownChecks is the set of claim checks the validator understands.
var knownChecks = map[string]bool{
	"typ": true,
	"alg": true,
	"iss": true,
	"iat": true,
	"nbf": true,
	"exp": true,
	"kid": true,
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			RefreshInterval: Duration(defaultRefreshInterval),
			RetryInterval:   Duration(defaultRetryInterval),
			Checks:          []string{"typ", "alg", "exp"},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Auth.validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

func (c *LogConfig) validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level: %s", c.Level)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid format: %s", c.Format)
	}
	return nil
}

func (c *AuthConfig) validate() error {
	if c.KeystoreURL == "" {
		return errors.New("keystoreURL is required")
	}
	if c.RefreshInterval < 0 {
		return errors.New("refreshInterval must be non-negative")
	}
	if c.RetryInterval < 0 {
		return errors.New("retryInterval must be non-negative")
	}
	for _, check := range c.Checks {
		if !knownChecks[check] {
			return fmt.Errorf("unknown check: %s", check)
		}
		if check == "iss" && c.Issuer == "" {
			return errors.New("iss check requires issuer")
		}
	}
	return nil
}

// GetEffectiveRefreshInterval returns the refresh interval or its default.
func (c *AuthConfig) GetEffectiveRefreshInterval() time.Duration {
	if c.RefreshInterval > 0 {
		return c.RefreshInterval.Duration()
	}
	return defaultRefreshInterval
}

// GetEffectiveRetryInterval returns the retry interval or its default.
func (c *AuthConfig) GetEffectiveRetryInterval() time.Duration {
	if c.RetryInterval > 0 {
		return c.RetryInterval.Duration()
	}
	return defaultRetryInterval
}
