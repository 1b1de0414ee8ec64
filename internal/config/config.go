// Package config loads the sqlsplit command configuration from flags,
// SQLSPLIT_* environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ladzaretti/sqlscript"
)

const envPrefix = "SQLSPLIT"

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the sqlsplit settings.
type Config struct {
	Database string `mapstructure:"db"`
	DSN      string `mapstructure:"dsn"`
	Format   string `mapstructure:"format"`
	NoTx     bool   `mapstructure:"no-tx"`
	LogLevel string `mapstructure:"log-level"`

	// DatabaseType is parsed from Database.
	DatabaseType sqlscript.DatabaseType `mapstructure:"-"`
}

// NewFlagSet returns the flags understood by [Load].
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.String("config", "", "path to a YAML, TOML or JSON config file")
	fs.String("db", "postgresql", "database type the scripts are written for")
	fs.String("dsn", "", "data source name used by apply")
	fs.String("format", FormatText, "output format of split: text or json")
	fs.Bool("no-tx", false, "apply scripts without a transaction")
	fs.String("log-level", "info", "log level: debug, info, warn or error")

	return fs
}

// Load resolves the configuration for the parsed flag set.
//
// Explicitly set flags take precedence over environment variables,
// which take precedence over the config file and flag defaults.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	t, err := sqlscript.ParseDatabaseType(c.Database)
	if err != nil {
		return fmt.Errorf("%w: db: %w", ErrInvalidConfig, err)
	}

	c.DatabaseType = t

	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidConfig, c.Format)
	}

	return nil
}
