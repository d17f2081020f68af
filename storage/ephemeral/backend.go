package ephemeral

import (
	"context"
	"sync"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/storage"
	"github.com/tidwall/btree"
)

// EphemeralBackend keeps everything in memory. Items are ordered by id in a
// B-tree so range scans run in either direction without sorting.
type EphemeralBackend struct {
	mu sync.RWMutex

	items     *btree.Map[int64, *data.Item]
	repos     map[int64]*data.Repo
	repoNames *btree.Map[string, int64]
	tags      map[int64]*data.Tag
	// relations maps a tag id to the ids of the items carrying it.
	relations map[int64]map[int64]struct{}

	nextItemID int64
	nextRepoID int64
	nextTagID  int64
}

var _ storage.Store = (*EphemeralBackend)(nil)

func NewEphemeralBackend() *EphemeralBackend {
	return &EphemeralBackend{
		items:     btree.NewMap[int64, *data.Item](0),
		repos:     make(map[int64]*data.Repo),
		repoNames: btree.NewMap[string, int64](0),
		tags:      make(map[int64]*data.Tag),
		relations: make(map[int64]map[int64]struct{}),
	}
}

// Name returns the identifier name defined for this backend.
func (*EphemeralBackend) Name() string {
	return "ephemeral"
}

// Open is part of the lifecycle behaviour; the backend is ready on construction.
func (eb *EphemeralBackend) Open(ctx context.Context) error {
	return nil
}

// Close drops all stored state.
func (eb *EphemeralBackend) Close(ctx context.Context) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.items.Clear()
	eb.repoNames.Clear()
	clear(eb.repos)
	clear(eb.tags)
	clear(eb.relations)
	return nil
}

func cloneItem(item *data.Item) *data.Item {
	c := *item
	if item.Extend.Picture != nil {
		picture := *item.Extend.Picture
		c.Extend.Picture = &picture
	}
	if item.Extend.Photo != nil {
		photo := *item.Extend.Photo
		c.Extend.Photo = &photo
	}
	return &c
}

func cloneTag(tag *data.Tag) *data.Tag {
	c := *tag
	return &c
}

func cloneRepo(repo *data.Repo) *data.Repo {
	c := *repo
	return &c
}
