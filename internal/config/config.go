package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. A validated Config value
// is injected into the components that need it; there is no global
// configuration state.
type Config struct {
	Station StationConfig `mapstructure:"station"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StationConfig holds the Download Station connection settings.
type StationConfig struct {
	URL      string        `mapstructure:"url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Root     string        `mapstructure:"root"` // filesystem root for local deletion
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RetryConfig holds the backoff settings for remote calls.
type RetryConfig struct {
	Attempts  int           `mapstructure:"attempts"`
	BaseDelay time.Duration `mapstructure:"base_delay"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.synoprune")
	}

	v.SetEnvPrefix("SYNOPRUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the required connection fields before any component
// sees the configuration.
func (c *Config) Validate() error {
	if c.Station.URL == "" {
		return errors.New("station.url is required")
	}
	u, err := url.Parse(c.Station.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("station.url %q is not a valid URL", c.Station.URL)
	}
	if c.Station.Username == "" {
		return errors.New("station.username is required")
	}
	if c.Station.Password == "" {
		return errors.New("station.password is required")
	}
	if c.Station.Root != "" && !filepath.IsAbs(c.Station.Root) {
		return fmt.Errorf("station.root %q must be an absolute path", c.Station.Root)
	}
	if c.Retry.Attempts < 0 {
		return errors.New("retry.attempts must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("station.url", "")
	v.SetDefault("station.username", "")
	v.SetDefault("station.password", "")
	v.SetDefault("station.root", "")
	v.SetDefault("station.timeout", 30*time.Second)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.base_delay", time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
}
