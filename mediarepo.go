// Package mediarepo stores media items in named repositories. Each repository
// owns a directory below a common root, item metadata lives in a storage
// backend and listings are served through keyset cursors.
package mediarepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/log"
	"github.com/mwantia/mediarepo/metrics"
	"github.com/mwantia/mediarepo/node"
	"github.com/mwantia/mediarepo/replica"
	"github.com/mwantia/mediarepo/resource"
	"github.com/mwantia/mediarepo/storage"
	"github.com/mwantia/mediarepo/thumbnail"
)

type MediaRepository struct {
	log     *log.Logger
	ownsLog bool

	store     storage.Store
	resources *resource.Manager
	codec     thumbnail.Codec
	metrics   *metrics.Metrics
	replica   replica.Replica

	maxThumbnailSize int64
}

// New creates a repository serving item rows from store and files below root.
// The store is not opened; call Open before first use.
func New(store storage.Store, root string, opts ...MediaRepositoryOption) (*MediaRepository, error) {
	options := newDefaultMediaRepositoryOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if store == nil {
		return nil, errors.Invalid("no storage backend")
	}
	if root == "" {
		return nil, errors.Invalid("no root directory")
	}

	logger, owned := options.Logger, false
	if logger == nil {
		logger = log.New("mediarepo", log.Options{
			Level:      options.LogLevel,
			File:       options.LogFile,
			NoTerminal: options.NoTerminalLog,
			JSON:       options.JSONLog,
			Rotation:   options.LogRotation,
		})
		owned = true
	}

	codec := options.Codec
	if codec == nil {
		codec = thumbnail.NewImagingCodec()
	}

	dir := node.ParseDir(root)
	if err := dir.Mkdir(); err != nil {
		return nil, err
	}

	return &MediaRepository{
		log:              logger,
		ownsLog:          owned,
		store:            store,
		resources:        resource.NewManager(dir, logger.Named("resource")),
		codec:            codec,
		metrics:          metrics.New(options.Registerer),
		replica:          options.Replica,
		maxThumbnailSize: options.MaxThumbnailSize,
	}, nil
}

// Open opens the storage backend and the replica, if any.
func (mr *MediaRepository) Open(ctx context.Context) error {
	if err := mr.store.Open(ctx); err != nil {
		return fmt.Errorf("failed to open storage '%s': %w", mr.store.Name(), err)
	}

	if mr.replica != nil {
		if err := mr.replica.Open(ctx); err != nil {
			return fmt.Errorf("failed to open replica '%s': %w", mr.replica.Name(), err)
		}
	}

	mr.log.Debug("Opened storage '%s'", mr.store.Name())
	return nil
}

// Close releases the storage backend, the replica and an owned logger. All
// of them are closed even if one fails.
func (mr *MediaRepository) Close(ctx context.Context) error {
	errs := &errors.Errors{}

	errs.Add(mr.store.Close(ctx))
	if mr.replica != nil {
		errs.Add(mr.replica.Close(ctx))
	}
	if mr.ownsLog {
		errs.Add(mr.log.Close())
	}

	return errs.Errors()
}

func validateRepoName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return errors.Invalid("repo name '%s'", name)
	case strings.ContainsAny(name, "/"+node.Separator):
		return errors.Invalid("repo name '%s' contains a separator", name)
	}
	return nil
}
