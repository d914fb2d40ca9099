package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Desk    DeskConfig    `mapstructure:"desk"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// DeskConfig holds desk API connection details
type DeskConfig struct {
	URL               string        `mapstructure:"url"`
	Auth              AuthConfig    `mapstructure:"auth"`
	Timeout           time.Duration `mapstructure:"timeout"`
	LegacyTLS         bool          `mapstructure:"legacy_tls"`
	NearingThreshold  int           `mapstructure:"nearing_threshold"`
	ProbeResource     string        `mapstructure:"probe_resource"`
	Retry             RetryConfig   `mapstructure:"retry"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// Authentication types
const (
	AuthBasic = "basic"
	AuthOAuth = "oauth"
)

// AuthConfig selects one authentication scheme.
// basic uses username and password; oauth uses the four API application values.
type AuthConfig struct {
	Type        string `mapstructure:"type"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	APIKey      string `mapstructure:"api_key"`
	APISecret   string `mapstructure:"api_secret"`
	Token       string `mapstructure:"token"`
	TokenSecret string `mapstructure:"token_secret"`
}

// Retry policies
const (
	RetryReset       = "reset"
	RetryExponential = "exponential"
)

// RetryConfig controls what happens after a 429 response
type RetryConfig struct {
	Policy     string `mapstructure:"policy"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// FilterConfig contains case filter definitions
type FilterConfig struct {
	DefaultExpression string                  `mapstructure:"default_expression"`
	Presets           map[string]PresetConfig `mapstructure:"presets"`
}

// PresetConfig is a named, reusable filter expression
type PresetConfig struct {
	Expression  string `mapstructure:"expression"`
	Description string `mapstructure:"description"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}
