package mediarepo

import (
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/log"
	"github.com/mwantia/mediarepo/replica"
	"github.com/mwantia/mediarepo/thumbnail"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxThumbnailSize is the item size in bytes up to which the original
// is served in place of a thumbnail.
const DefaultMaxThumbnailSize int64 = 1 << 20

type MediaRepositoryOptions struct {
	Logger        *log.Logger
	LogLevel      log.LogLevel
	LogFile       string
	LogRotation   log.Rotation
	NoTerminalLog bool
	JSONLog       bool

	MaxThumbnailSize int64
	Codec            thumbnail.Codec
	Registerer       prometheus.Registerer
	Replica          replica.Replica
}

type MediaRepositoryOption func(*MediaRepositoryOptions) error

func newDefaultMediaRepositoryOptions() *MediaRepositoryOptions {
	return &MediaRepositoryOptions{
		LogLevel:         log.Info,
		LogRotation:      log.DefaultRotation,
		MaxThumbnailSize: DefaultMaxThumbnailSize,
	}
}

// WithLogger uses logger instead of building one; the log level and file
// options are ignored then.
func WithLogger(logger *log.Logger) MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.Logger = logger
		return nil
	}
}

func WithLogLevel(logLevel log.LogLevel) MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithoutTerminalLog() MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string, rotation log.Rotation) MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.LogFile = logFile
		opts.LogRotation = rotation
		return nil
	}
}

func WithJSONLog() MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.JSONLog = true
		return nil
	}
}

func WithMaxThumbnailSize(size int64) MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		if size < 0 {
			return errors.Invalid("max thumbnail size %d", size)
		}

		opts.MaxThumbnailSize = size
		return nil
	}
}

func WithCodec(codec thumbnail.Codec) MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.Codec = codec
		return nil
	}
}

// WithMetrics registers the repository collectors on reg.
func WithMetrics(reg prometheus.Registerer) MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.Registerer = reg
		return nil
	}
}

// WithReplica mirrors every created item into r. Upload failures are logged
// and never fail the creation.
func WithReplica(r replica.Replica) MediaRepositoryOption {
	return func(opts *MediaRepositoryOptions) error {
		opts.Replica = r
		return nil
	}
}
