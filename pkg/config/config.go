// Package config loads ordering settings from defaults, an optional YAML
// file and ORDERING_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/the-dev-tools/ordering/pkg/logger"
	"github.com/the-dev-tools/ordering/pkg/movable"
	"github.com/the-dev-tools/ordering/pkg/redisorder"
)

const (
	ConfigFileName      = ".ordering"
	ConfigFileExtension = ".yaml"
	EnvPrefix           = "ORDERING"

	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Ordering OrderingConfig `mapstructure:"ordering" yaml:"ordering"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

type OrderingConfig struct {
	Gap    float64 `mapstructure:"gap" yaml:"gap"`
	MinGap float64 `mapstructure:"min_gap" yaml:"min_gap"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver" yaml:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	RedisURL    string `mapstructure:"redis_url" yaml:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultPath returns $HOME/.ordering.yaml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ConfigFileName+ConfigFileExtension), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ordering.gap", movable.DefaultGap)
	v.SetDefault("ordering.min_gap", movable.DefaultMinGap)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", "ordering.db")
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.redis_prefix", redisorder.DefaultPrefix)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatText)
}

// New returns a viper instance with defaults and environment bindings but
// no file. Load uses it; the CLI binds its flags onto it.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An empty path means the default file, which
// may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return Config{}, err
	}
	return Decode(v)
}

// ReadFile merges the YAML file at path into v. "~" is expanded.
func ReadFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Movable().Validate(); err != nil {
		return err
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: store.sqlite_path is required for the sqlite driver", ErrInvalid)
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: store.redis_url is required for the redis driver", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalid, c.Store.Driver)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case logger.FormatText, logger.FormatJSON, "":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Movable returns the ordering parameters for the core package.
func (c Config) Movable() movable.Config {
	return movable.Config{Gap: c.Ordering.Gap, MinGap: c.Ordering.MinGap}
}
