// Package config loads the settings of the mediarepo command line tool from a
// yaml file and MEDIAREPO_ prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Root is the directory holding one subdirectory per repo.
	Root string `mapstructure:"root" validate:"required"`

	Logging LoggingConfig `mapstructure:"logging"`

	Storage StorageConfig `mapstructure:"storage"`

	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`

	Replica ReplicaConfig `mapstructure:"replica"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR FATAL"`

	// File switches output to a rotated log file; empty logs to stdout.
	File string `mapstructure:"file"`

	JSON bool `mapstructure:"json"`

	NoColor bool `mapstructure:"no_color"`

	MaxSizeMB int `mapstructure:"max_size_mb" validate:"gte=0"`

	MaxBackups int `mapstructure:"max_backups" validate:"gte=0"`

	MaxAgeDays int `mapstructure:"max_age_days" validate:"gte=0"`

	Compress bool `mapstructure:"compress"`
}

type StorageConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres ephemeral"`

	SQLite SQLiteConfig `mapstructure:"sqlite"`

	Postgres PostgresConfig `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ThumbnailConfig struct {
	// MaxSize is the item size in bytes up to which the original is served
	// instead of a thumbnail.
	MaxSize int64 `mapstructure:"max_size" validate:"gte=0"`

	Width int `mapstructure:"width" validate:"gt=0,lte=4096"`

	Height int `mapstructure:"height" validate:"gt=0,lte=4096"`

	Quality int `mapstructure:"quality" validate:"gte=1,lte=100"`
}

type ReplicaConfig struct {
	Enabled bool `mapstructure:"enabled"`

	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`

	Bucket string `mapstructure:"bucket" validate:"required_if=Enabled true"`

	// Region skips the bucket location lookup when set.
	Region string `mapstructure:"region"`

	AccessKey string `mapstructure:"access_key"`

	SecretKey string `mapstructure:"secret_key"`

	UseSSL bool `mapstructure:"use_ssl"`

	CreateBucket bool `mapstructure:"create_bucket"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configPath (or the default location when empty), applies
// environment overrides and defaults, then validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	// MEDIAREPO_STORAGE_TYPE=postgres
	v.SetEnvPrefix("MEDIAREPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper knows about.
	for _, key := range []string{
		"root",
		"logging.level", "logging.file", "logging.json",
		"storage.type", "storage.sqlite.path", "storage.postgres.dsn",
		"thumbnail.max_size",
		"replica.enabled", "replica.endpoint", "replica.bucket", "replica.region", "replica.access_key", "replica.secret_key",
		"metrics.enabled",
	} {
		v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(GetConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/mediarepo, falling back to
// ~/.config/mediarepo and finally the working directory.
func GetConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mediarepo")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "mediarepo")
}
