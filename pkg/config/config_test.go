package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Session.TTL != 24*time.Hour {
		t.Errorf("Expected default session TTL to be 24h, got %v", config.Session.TTL)
	}

	if config.Scan.FeedWindow != 1000 {
		t.Errorf("Expected default feed window to be 1000, got %d", config.Scan.FeedWindow)
	}

	if config.Scan.JitterMin != 500*time.Millisecond || config.Scan.JitterMax != 3*time.Second {
		t.Errorf("Expected default jitter bounds 500ms..3s, got %v..%v", config.Scan.JitterMin, config.Scan.JitterMax)
	}

	if config.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("Expected default requests per minute to be 60, got %d", config.RateLimit.RequestsPerMinute)
	}

	if config.Logging.File != "app.log" {
		t.Errorf("Expected default log file to be app.log, got %s", config.Logging.File)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("IGMONTHLY_USERNAME", "test-account")
	os.Setenv("IGMONTHLY_USER_AGENT", "test-agent")
	os.Setenv("IGMONTHLY_PROXIES", "http://p1:8080, http://p2:8080")
	os.Setenv("IGMONTHLY_SESSION_DIR", "/tmp/test-sessions")
	os.Setenv("IGMONTHLY_REQUESTS_PER_MINUTE", "30")
	os.Setenv("IGMONTHLY_FEED_WINDOW", "500")
	os.Setenv("IGMONTHLY_OUTPUT_DIR", "/tmp/test-results")
	os.Setenv("IGMONTHLY_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("IGMONTHLY_USERNAME")
		os.Unsetenv("IGMONTHLY_USER_AGENT")
		os.Unsetenv("IGMONTHLY_PROXIES")
		os.Unsetenv("IGMONTHLY_SESSION_DIR")
		os.Unsetenv("IGMONTHLY_REQUESTS_PER_MINUTE")
		os.Unsetenv("IGMONTHLY_FEED_WINDOW")
		os.Unsetenv("IGMONTHLY_OUTPUT_DIR")
		os.Unsetenv("IGMONTHLY_LOG_LEVEL")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Instagram.Username != "test-account" {
		t.Errorf("Expected username to be test-account, got %s", config.Instagram.Username)
	}

	if config.Instagram.UserAgent != "test-agent" {
		t.Errorf("Expected user agent to be test-agent, got %s", config.Instagram.UserAgent)
	}

	if len(config.Instagram.Proxies) != 2 || config.Instagram.Proxies[0] != "http://p1:8080" || config.Instagram.Proxies[1] != "http://p2:8080" {
		t.Errorf("Expected two trimmed proxies, got %v", config.Instagram.Proxies)
	}

	if config.Session.Directory != "/tmp/test-sessions" {
		t.Errorf("Expected session directory to be /tmp/test-sessions, got %s", config.Session.Directory)
	}

	if config.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("Expected requests per minute to be 30, got %d", config.RateLimit.RequestsPerMinute)
	}

	if config.Scan.FeedWindow != 500 {
		t.Errorf("Expected feed window to be 500, got %d", config.Scan.FeedWindow)
	}

	if config.Output.Directory != "/tmp/test-results" {
		t.Errorf("Expected output directory to be /tmp/test-results, got %s", config.Output.Directory)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "zero TTL",
			mutate:    func(c *Config) { c.Session.TTL = 0 },
			wantError: true,
		},
		{
			name:      "zero feed window",
			mutate:    func(c *Config) { c.Scan.FeedWindow = 0 },
			wantError: true,
		},
		{
			name: "jitter max below min",
			mutate: func(c *Config) {
				c.Scan.JitterMin = 2 * time.Second
				c.Scan.JitterMax = time.Second
			},
			wantError: true,
		},
		{
			name:      "zero requests per minute",
			mutate:    func(c *Config) { c.RateLimit.RequestsPerMinute = 0 },
			wantError: true,
		},
		{
			name:      "zero retry attempts",
			mutate:    func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantError: true,
		},
		{
			name:      "empty output directory",
			mutate:    func(c *Config) { c.Output.Directory = "" },
			wantError: true,
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Logging.Level = "loud" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := DefaultConfig()
	original.Instagram.Username = "saved-account"
	original.Session.TTL = 12 * time.Hour
	original.Scan.FeedWindow = 250

	if err := original.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Instagram.Username != "saved-account" {
		t.Errorf("Expected username saved-account, got %s", loaded.Instagram.Username)
	}
	if loaded.Session.TTL != 12*time.Hour {
		t.Errorf("Expected TTL 12h, got %v", loaded.Session.TTL)
	}
	if loaded.Scan.FeedWindow != 250 {
		t.Errorf("Expected feed window 250, got %d", loaded.Scan.FeedWindow)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	fileConfig := DefaultConfig()
	fileConfig.Instagram.Username = "from-file"
	fileConfig.Output.Directory = "/tmp/from-file"
	if err := fileConfig.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	os.Setenv("IGMONTHLY_USERNAME", "from-env")
	defer os.Unsetenv("IGMONTHLY_USERNAME")

	flags := map[string]interface{}{
		"account": "from-flag",
	}

	config, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Flags beat env beats file
	if config.Instagram.Username != "from-flag" {
		t.Errorf("Expected flag to win, got %s", config.Instagram.Username)
	}

	// File values survive where nothing overrides them
	if config.Output.Directory != "/tmp/from-file" {
		t.Errorf("Expected file output directory to survive, got %s", config.Output.Directory)
	}
}

func TestLoadFromFileMissingPathIsNotAnError(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile(""); err != nil {
		t.Errorf("Empty path with no config file present should not error, got %v", err)
	}
}
