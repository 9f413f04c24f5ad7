// Package config loads service and CLI settings from defaults, a YAML file,
// .env and DCF_* environment variables (highest precedence last).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"`
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string `mapstructure:"host"     yaml:"host"`
	Port    int    `mapstructure:"port"     yaml:"port"`
	MaxBody string `mapstructure:"max_body" yaml:"max_body"` // echo BodyLimit syntax, e.g. "4M"
}

// DatabaseConfig holds Postgres settings. An empty URL disables the database.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"          yaml:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// StoreConfig holds the file fallback used when no database is configured.
type StoreConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// ValuationConfig holds engine defaults.
type ValuationConfig struct {
	AssumptionsFile string `mapstructure:"assumptions_file" yaml:"assumptions_file"` // optional overlay on the built-in defaults
	ProjectionYears int    `mapstructure:"projection_years" yaml:"projection_years"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `mapstructure:"level"    yaml:"level"` // "debug", "info", "warn", "error"
	Requests bool   `mapstructure:"requests" yaml:"requests"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the configuration from ./config/config.yaml (optional) and the environment.
// Format: DCF_<SECTION>_<KEY>, e.g., DCF_SERVER_PORT
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	// Load .env file if it exists (local dev)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DCF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body", "4M")

	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("store.dir", ".cache/valuation_runs")

	v.SetDefault("valuation.assumptions_file", "")
	v.SetDefault("valuation.projection_years", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.requests", true)
}

// overrideFromEnv honours the conventional unprefixed variables used by hosting platforms.
func overrideFromEnv(cfg *Config) {
	if url := os.Getenv("DATABASE_URL"); url != "" && cfg.Database.URL == "" {
		cfg.Database.URL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}
