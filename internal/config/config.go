// Package config loads doitip settings from defaults, an optional YAML file,
// DOITIP_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"doitip/internal/doira"
	"doitip/internal/format"
	"doitip/internal/logging"
	"doitip/internal/tracing"
)

// EnvPrefix is prepended to every environment variable, e.g. DOITIP_TIMEOUT.
const EnvPrefix = "DOITIP"

// Config holds all configuration options for doitip.
type Config struct {
	Endpoints doira.Endpoints `mapstructure:",squash"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	// RACacheTTL keeps DOI to agency lookups for this long. The default 0
	// disables the cache.
	RACacheTTL time.Duration  `mapstructure:"ra_cache_ttl"`
	UserAgent  string         `mapstructure:"user_agent"`
	Output     string         `mapstructure:"output"`
	Log        LogConfig      `mapstructure:"log"`
	Tracing    tracing.Config `mapstructure:"tracing"`
}

// LogConfig selects slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Endpoints: doira.DefaultEndpoints(),
		Timeout:   doira.DefaultTimeout,
		Output:    format.JSON.String(),
		Log:       LogConfig{Level: "warn", Format: logging.FormatText},
		Tracing:   tracing.DefaultConfig(),
	}
}

// SetDefaults registers every key on v so environment variables bind to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("doi_url", d.Endpoints.DOI)
	v.SetDefault("crossref_url", d.Endpoints.Crossref)
	v.SetDefault("crossref_api_url", d.Endpoints.CrossrefAPI)
	v.SetDefault("datacite_api_url", d.Endpoints.DataCiteAPI)
	v.SetDefault("medra_api_url", d.Endpoints.MEDRAAPI)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("ra_cache_ttl", d.RACacheTTL)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("output", d.Output)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// DefaultPath is the user config file location, e.g. ~/.config/doitip/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "doitip", "config.yaml")
}

// Load reads configuration into v and decodes it. An explicit path must
// exist; without one, a missing default file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch def := DefaultPath(); {
	case path != "":
		v.SetConfigFile(path)
	case def != "":
		v.AddConfigPath(filepath.Dir(def))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	if _, err := format.ParseMode(c.Output); err != nil {
		return fmt.Errorf("config: output: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("config: log.format: unknown format %q", c.Log.Format)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	if c.RACacheTTL < 0 {
		return fmt.Errorf("config: ra_cache_ttl must not be negative, got %s", c.RACacheTTL)
	}
	return c.Tracing.Validate()
}
