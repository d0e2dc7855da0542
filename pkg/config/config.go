package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	InterceptModeNetwork = "network"
	InterceptModePage    = "page"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	StartURL      string `mapstructure:"START_URL"`
	APIMarker     string `mapstructure:"API_MARKER"`
	InterceptMode string `mapstructure:"INTERCEPT_MODE"`

	ChromeRemoteURL   string `mapstructure:"CHROME_REMOTE_URL"`
	ChromeHeadless    bool   `mapstructure:"CHROME_HEADLESS"`
	ChromeUserDataDir string `mapstructure:"CHROME_USER_DATA_DIR"`

	FocusOverlayTimeoutSeconds int    `mapstructure:"FOCUS_OVERLAY_TIMEOUT_SECONDS"`
	DisplayTimezone            string `mapstructure:"DISPLAY_TIMEZONE"`
	ShutdownTimeoutSeconds     int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env is fine, the environment alone is enough in production.
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("START_URL", "https://www.linkedin.com/jobs/")
	v.SetDefault("API_MARKER", "voyager/api/jobs/jobPostings")
	v.SetDefault("INTERCEPT_MODE", InterceptModeNetwork)
	v.SetDefault("CHROME_REMOTE_URL", "")
	v.SetDefault("CHROME_HEADLESS", false)
	v.SetDefault("CHROME_USER_DATA_DIR", "")
	v.SetDefault("FOCUS_OVERLAY_TIMEOUT_SECONDS", 10)
	v.SetDefault("DISPLAY_TIMEZONE", "Local")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.InterceptMode {
	case InterceptModeNetwork, InterceptModePage:
	default:
		return fmt.Errorf("invalid INTERCEPT_MODE %q: want %q or %q", c.InterceptMode, InterceptModeNetwork, InterceptModePage)
	}
	if strings.TrimSpace(c.APIMarker) == "" {
		return fmt.Errorf("API_MARKER must not be empty")
	}
	if c.FocusOverlayTimeoutSeconds <= 0 {
		return fmt.Errorf("FOCUS_OVERLAY_TIMEOUT_SECONDS must be positive, got %d", c.FocusOverlayTimeoutSeconds)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// FocusOverlayTimeout is how long a focused job overlay stays up.
func (c *Config) FocusOverlayTimeout() time.Duration {
	return time.Duration(c.FocusOverlayTimeoutSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Location resolves DISPLAY_TIMEZONE. Empty and "Local" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" || c.DisplayTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}
