// Package config loads towncore settings from defaults, an optional config
// file and TOWNCORE_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// DatasetConfig selects where the initial towns come from.
type DatasetConfig struct {
	// Driver is blob, sqlite, postgres or none.
	Driver   string         `mapstructure:"driver"`
	Blob     BlobConfig     `mapstructure:"blob"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// BlobConfig locates a dataset object.
type BlobConfig struct {
	Driver string   `mapstructure:"driver"`
	Root   string   `mapstructure:"root"`
	Key    string   `mapstructure:"key"`
	S3     S3Config `mapstructure:"s3"`
}

// S3Config holds bucket coordinates for the s3 blob driver.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// SQLiteConfig holds sqlite settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig holds postgres settings.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// HTTPConfig holds the listen address of the serve command.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig toggles the Prometheus recorder and /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// EnvConfigFile names the variable pointing at an explicit config file.
const EnvConfigFile = "TOWNCORE_CONFIG"

func defaults(v *viper.Viper) {
	v.SetDefault("dataset.driver", "blob")
	v.SetDefault("dataset.blob.driver", "fs")
	v.SetDefault("dataset.blob.root", "./data")
	v.SetDefault("dataset.blob.key", "towns.json")
	v.SetDefault("dataset.blob.s3.bucket", "")
	v.SetDefault("dataset.blob.s3.region", "us-east-1")
	v.SetDefault("dataset.blob.s3.endpoint", "")
	v.SetDefault("dataset.blob.s3.path_style", false)
	v.SetDefault("dataset.sqlite.path", "towncore.db")
	v.SetDefault("dataset.postgres.dsn", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.enabled", true)
}

// Load reads configuration from the file named by TOWNCORE_CONFIG, if any.
func Load() (Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile reads configuration. A non-empty explicit path must exist;
// otherwise ./towncore.{toml,yaml,json} is read when present. Env vars
// override both, e.g. TOWNCORE_DATASET_BLOB_KEY.
func LoadFile(explicit string) (Config, error) {
	v := viper.New()
	defaults(v)

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("towncore")
	}

	v.SetEnvPrefix("TOWNCORE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &missing) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects unknown driver and format names.
func (c Config) Validate() error {
	switch c.Dataset.Driver {
	case "blob", "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("unknown dataset driver %q", c.Dataset.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
