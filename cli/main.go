package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mwantia/mediarepo"
	"github.com/mwantia/mediarepo/cmd"
	"github.com/mwantia/mediarepo/cmd/builtin"
	"github.com/mwantia/mediarepo/config"
	"github.com/mwantia/mediarepo/log"
	"github.com/mwantia/mediarepo/replica"
	"github.com/mwantia/mediarepo/storage"
	"github.com/mwantia/mediarepo/storage/ephemeral"
	"github.com/mwantia/mediarepo/storage/postgres"
	"github.com/mwantia/mediarepo/storage/sqlite"
	"github.com/mwantia/mediarepo/thumbnail"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	configPath, args := splitGlobalArgs(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		return 1
	}

	logger := log.New("mediarepo", log.Options{
		Level:    level,
		File:     cfg.Logging.File,
		NoColor:  cfg.Logging.NoColor,
		JSON:     cfg.Logging.JSON,
		Rotation: cfg.Logging.Rotation(),
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mr, reg, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to set up media repository: %v", err)
		return 1
	}
	defer func() {
		if err := mr.Close(context.Background()); err != nil {
			logger.Error("Failed to close media repository: %v", err)
		}
	}()

	cm := cmd.NewCommandManager(mr)
	if err := builtin.InitBuiltin(cm); err != nil {
		logger.Error("Failed to register commands: %v", err)
		return 1
	}

	if len(args) == 0 || args[0] == "help" {
		fmt.Fprintln(os.Stdout, "usage: mediarepo [--config file] <command> [args]")
		cm.Help(os.Stdout)
		return 0
	}

	code, err := cm.Execute(ctx, os.Stdout, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
	}

	dumpMetrics(logger, reg)
	return code
}

// splitGlobalArgs removes a leading --config/-c flag.
func splitGlobalArgs(args []string) (string, []string) {
	if len(args) == 0 {
		return "", args
	}

	switch {
	case args[0] == "--config" || args[0] == "-c":
		if len(args) < 2 {
			return "", args[1:]
		}
		return args[1], args[2:]
	case strings.HasPrefix(args[0], "--config="):
		return strings.TrimPrefix(args[0], "--config="), args[1:]
	}
	return "", args
}

func setup(ctx context.Context, cfg *config.Config, logger *log.Logger) (*mediarepo.MediaRepository, *prometheus.Registry, error) {
	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	codec := thumbnail.NewImagingCodec()
	codec.MaxWidth = cfg.Thumbnail.Width
	codec.MaxHeight = cfg.Thumbnail.Height
	codec.Quality = cfg.Thumbnail.Quality

	opts := []mediarepo.MediaRepositoryOption{
		mediarepo.WithLogger(logger),
		mediarepo.WithCodec(codec),
		mediarepo.WithMaxThumbnailSize(cfg.Thumbnail.MaxSize),
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, mediarepo.WithMetrics(reg))
	}

	if cfg.Replica.Enabled {
		r, err := replica.NewS3Replica(replica.Options{
			Endpoint:     cfg.Replica.Endpoint,
			Bucket:       cfg.Replica.Bucket,
			Region:       cfg.Replica.Region,
			AccessKey:    cfg.Replica.AccessKey,
			SecretKey:    cfg.Replica.SecretKey,
			UseSSL:       cfg.Replica.UseSSL,
			CreateBucket: cfg.Replica.CreateBucket,
		})
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, mediarepo.WithReplica(r))
	}

	mr, err := mediarepo.New(store, cfg.Root, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := mr.Open(ctx); err != nil {
		return nil, nil, err
	}

	return mr, reg, nil
}

func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.NewPostgresBackend(ctx, cfg.Postgres.DSN)
	case "ephemeral":
		return ephemeral.NewEphemeralBackend(), nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, err
		}
		return sqlite.NewSQLiteBackend(cfg.SQLite.Path)
	}
}

// dumpMetrics logs every collected counter at debug level.
func dumpMetrics(logger *log.Logger, reg *prometheus.Registry) {
	if reg == nil || !logger.Enabled(log.Debug) {
		return
	}

	families, err := reg.Gather()
	if err != nil {
		logger.Warn("Failed to gather metrics: %v", err)
		return
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetName()+"="+label.GetValue())
			}

			value := metric.GetCounter().GetValue()
			if h := metric.GetHistogram(); h != nil {
				value = h.GetSampleSum()
			}
			logger.Debug("%s{%s} %g", family.GetName(), strings.Join(labels, ","), value)
		}
	}
}
