package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/s0up4200/deskctl/desk"
)

// placeholderURL is the value shipped in config.yaml.example
const placeholderURL = "https://your-instance.desk.com/api/v2"

// Load loads the configuration from file and DESK_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".deskctl"))
		}

		// Check /etc
		v.AddConfigPath("/etc/deskctl/")
	}

	// Read config file; without an explicit path the environment alone may suffice
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Desk defaults
	v.SetDefault("desk.auth.type", AuthBasic)
	v.SetDefault("desk.timeout", "30s")
	v.SetDefault("desk.legacy_tls", false)
	v.SetDefault("desk.nearing_threshold", desk.DefaultNearingThreshold)
	v.SetDefault("desk.probe_resource", "groups")
	v.SetDefault("desk.retry.policy", RetryReset)
	v.SetDefault("desk.retry.max_retries", 1)
	v.SetDefault("desk.requests_per_second", 0)
	v.SetDefault("desk.burst", 1)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")
}

// bindEnv maps the DESK_* variables onto configuration keys.
// Credentials get short names so they can be kept out of config files.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("DESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	short := map[string]string{
		"desk.url":               "DESK_URL",
		"desk.auth.type":         "DESK_AUTH_TYPE",
		"desk.auth.username":     "DESK_USERNAME",
		"desk.auth.password":     "DESK_PASSWORD",
		"desk.auth.api_key":      "DESK_API_KEY",
		"desk.auth.api_secret":   "DESK_API_SECRET",
		"desk.auth.token":        "DESK_TOKEN",
		"desk.auth.token_secret": "DESK_TOKEN_SECRET",
	}
	for key, env := range short {
		_ = v.BindEnv(key, env)
	}
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Desk.URL == "" {
		return fmt.Errorf("desk.url is required")
	}
	if cfg.Desk.URL == placeholderURL {
		return fmt.Errorf("desk.url must be set to your desk instance")
	}
	if u, err := url.Parse(cfg.Desk.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid desk.url: %s", cfg.Desk.URL)
	}

	switch cfg.Desk.Auth.Type {
	case AuthBasic:
		if cfg.Desk.Auth.Username == "" {
			return fmt.Errorf("desk.auth.username is required for basic authentication")
		}
	case AuthOAuth:
		a := cfg.Desk.Auth
		if a.APIKey == "" || a.APISecret == "" || a.Token == "" || a.TokenSecret == "" {
			return fmt.Errorf("desk.auth.api_key, api_secret, token and token_secret are required for oauth authentication")
		}
	default:
		return fmt.Errorf("invalid desk.auth.type: %s (must be 'basic' or 'oauth')", cfg.Desk.Auth.Type)
	}

	if cfg.Desk.NearingThreshold < 0 || cfg.Desk.NearingThreshold > 100 {
		return fmt.Errorf("invalid desk.nearing_threshold: %d (must be between 0 and 100)", cfg.Desk.NearingThreshold)
	}

	switch cfg.Desk.Retry.Policy {
	case RetryReset, RetryExponential:
	default:
		return fmt.Errorf("invalid desk.retry.policy: %s (must be 'reset' or 'exponential')", cfg.Desk.Retry.Policy)
	}
	if cfg.Desk.Retry.MaxRetries < 0 {
		return fmt.Errorf("desk.retry.max_retries cannot be negative")
	}
	if cfg.Desk.RequestsPerSecond < 0 {
		return fmt.Errorf("desk.requests_per_second cannot be negative")
	}

	for name, preset := range cfg.Filter.Presets {
		if strings.TrimSpace(preset.Expression) == "" {
			return fmt.Errorf("filter preset %q has no expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}

	return nil
}

// Credentials returns the desk credentials selected by desk.auth.type
func (c *DeskConfig) Credentials() desk.Credentials {
	if c.Auth.Type == AuthOAuth {
		return desk.OAuth1Credentials{
			APIKey:      c.Auth.APIKey,
			APISecret:   c.Auth.APISecret,
			Token:       c.Auth.Token,
			TokenSecret: c.Auth.TokenSecret,
		}
	}
	return desk.BasicCredentials{
		Username: c.Auth.Username,
		Password: c.Auth.Password,
	}
}

// RetryPolicy returns the policy selected by desk.retry
func (c *DeskConfig) RetryPolicy() desk.RetryPolicy {
	if c.Retry.Policy == RetryExponential {
		return desk.NewExponentialPolicy(c.Retry.MaxRetries)
	}
	return desk.ResetWindowPolicy{MaxRetries: c.Retry.MaxRetries}
}

// ClientOptions maps the desk section onto client options
func (c *Config) ClientOptions(logger zerolog.Logger) []desk.Option {
	opts := []desk.Option{
		desk.WithLogger(logger),
		desk.WithTimeout(c.Desk.Timeout),
		desk.WithRetryPolicy(c.Desk.RetryPolicy()),
		desk.WithNearingThreshold(c.Desk.NearingThreshold),
		desk.WithProbeResource(c.Desk.ProbeResource),
	}
	if c.Desk.LegacyTLS {
		opts = append(opts, desk.WithLegacyTLS())
	}
	if c.Desk.RequestsPerSecond > 0 {
		opts = append(opts, desk.WithRequestsPerSecond(c.Desk.RequestsPerSecond, c.Desk.Burst))
	}
	return opts
}

// NewClient builds a desk client from the configuration
func (c *Config) NewClient(logger zerolog.Logger, extra ...desk.Option) (*desk.Client, error) {
	opts := append(c.ClientOptions(logger), extra...)
	return desk.New(c.Desk.URL, c.Desk.Credentials(), opts...)
}

// Preset returns the expression of a named filter preset
func (c *Config) Preset(name string) (string, bool) {
	p, ok := c.Filter.Presets[name]
	if !ok {
		return "", false
	}
	return p.Expression, true
}
