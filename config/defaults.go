package config

import (
	"path/filepath"
	"strings"

	"github.com/mwantia/mediarepo/log"
	"github.com/mwantia/mediarepo/thumbnail"
)

const DefaultMaxThumbnailSize int64 = 1 << 20

// ApplyDefaults replaces zero values with defaults. Explicit values are kept.
func ApplyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = filepath.Join(GetConfigDir(), "repos")
	}

	applyLoggingDefaults(&cfg.Logging)
	applyStorageDefaults(&cfg.Storage, cfg.Root)
	applyThumbnailDefaults(&cfg.Thumbnail)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = log.DefaultRotation.MaxSizeMB
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = log.DefaultRotation.MaxBackups
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = log.DefaultRotation.MaxAgeDays
	}
}

func applyStorageDefaults(cfg *StorageConfig, root string) {
	if cfg.Type == "" {
		cfg.Type = "sqlite"
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = filepath.Join(root, "media.db")
	}
}

func applyThumbnailDefaults(cfg *ThumbnailConfig) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultMaxThumbnailSize
	}
	if cfg.Width == 0 {
		cfg.Width = thumbnail.DefaultMaxSize
	}
	if cfg.Height == 0 {
		cfg.Height = thumbnail.DefaultMaxSize
	}
	if cfg.Quality == 0 {
		cfg.Quality = thumbnail.DefaultQuality
	}
}

// Rotation converts the logging settings into log rotation options.
func (cfg LoggingConfig) Rotation() log.Rotation {
	return log.Rotation{
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
