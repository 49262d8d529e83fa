package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the monthly post counter
type Config struct {
	// Instagram account and client settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Cached session settings
	Session SessionConfig `yaml:"session" json:"session"`

	// Month scan settings
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Transport retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Export settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	Username       string        `yaml:"username" json:"username"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	Proxies        []string      `yaml:"proxies" json:"proxies"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// SessionConfig holds cached-session configuration.
// TTL is the age past which a session file is treated as absent.
type SessionConfig struct {
	Directory string        `yaml:"directory" json:"directory"`
	TTL       time.Duration `yaml:"ttl" json:"ttl"`
}

// ScanConfig holds the month-scan knobs. FeedWindow caps how many recent
// posts are fetched per user; the jitter bounds the sleep between month
// scans.
type ScanConfig struct {
	FeedWindow int           `yaml:"feed_window" json:"feed_window"`
	JitterMin  time.Duration `yaml:"jitter_min" json:"jitter_min"`
	JitterMax  time.Duration `yaml:"jitter_max" json:"jitter_max"`
}

// RateLimitConfig holds rate limiting configuration. Strategy selects the
// limiter implementation, token_bucket or sliding_window.
type RateLimitConfig struct {
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int    `yaml:"burst_size" json:"burst_size"`
	Strategy          string `yaml:"strategy" json:"strategy"`
}

// RetryConfig holds transport-level retry configuration
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay" json:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
}

// OutputConfig holds export directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration. File is the run log the
// exporter filters at the end of a run. Console is switched off when the
// terminal is owned by the interactive UI.
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	Console bool   `yaml:"console" json:"console"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent:      "Instagram 269.0.0.18.75 Android (26/8.0.0; 480dpi; 1080x1920; OnePlus; 6T Dev; devitron; qcom; en_US; 314665256)",
			Proxies:        nil,
			RequestTimeout: 30 * time.Second,
		},
		Session: SessionConfig{
			Directory: ".",
			TTL:       24 * time.Hour,
		},
		Scan: ScanConfig{
			FeedWindow: 1000,
			JitterMin:  500 * time.Millisecond,
			JitterMax:  3 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
			Strategy:          "token_bucket",
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
		Output: OutputConfig{
			Directory: ".",
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    "app.log",
			Console: true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if username := os.Getenv("IGMONTHLY_USERNAME"); username != "" {
		c.Instagram.Username = username
	}
	if userAgent := os.Getenv("IGMONTHLY_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}
	if proxies := os.Getenv("IGMONTHLY_PROXIES"); proxies != "" {
		var list []string
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		c.Instagram.Proxies = list
	}

	if sessionDir := os.Getenv("IGMONTHLY_SESSION_DIR"); sessionDir != "" {
		c.Session.Directory = sessionDir
	}

	if rpm := os.Getenv("IGMONTHLY_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if window := os.Getenv("IGMONTHLY_FEED_WINDOW"); window != "" {
		var val int
		fmt.Sscanf(window, "%d", &val)
		if val > 0 {
			c.Scan.FeedWindow = val
		}
	}

	if outputDir := os.Getenv("IGMONTHLY_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if logLevel := os.Getenv("IGMONTHLY_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("IGMONTHLY_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".igmonthly.yaml",
		".igmonthly.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igmonthly", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igmonthly", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igmonthly.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igmonthly.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Instagram.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Session.Directory == "" {
		errs = append(errs, errors.New("session directory is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session TTL must be positive"))
	}

	if c.Scan.FeedWindow <= 0 {
		errs = append(errs, errors.New("feed window must be positive"))
	}
	if c.Scan.JitterMin < 0 {
		errs = append(errs, errors.New("jitter minimum cannot be negative"))
	}
	if c.Scan.JitterMax < c.Scan.JitterMin {
		errs = append(errs, errors.New("jitter maximum must be at least the minimum"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}
	validStrategies := map[string]bool{
		"token_bucket": true, "sliding_window": true,
	}
	if !validStrategies[strings.ToLower(c.RateLimit.Strategy)] {
		errs = append(errs, errors.New("invalid rate limit strategy"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if account, ok := flags["account"].(string); ok && account != "" {
		c.Instagram.Username = account
	}
	if userAgent, ok := flags["user-agent"].(string); ok && userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}
	if proxies, ok := flags["proxy"].([]string); ok && len(proxies) > 0 {
		c.Instagram.Proxies = proxies
	}
	if sessionDir, ok := flags["session-dir"].(string); ok && sessionDir != "" {
		c.Session.Directory = sessionDir
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igmonthly.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
