package storage

import (
	"context"
	"time"

	"github.com/mwantia/mediarepo/data"
)

// Backend is used as lifecycle entrypoint for all storage implementations.
type Backend interface {
	// Name returns the identifier name defined for this backend.
	Name() string
	// Open is part of the lifecycle behaviour and gets called before first use.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and releases all resources.
	Close(ctx context.Context) error
}

// ItemReader serves the range scans used by the cursor. Soft-deleted items
// are invisible to every method.
type ItemReader interface {
	// SelectMinMaxID returns the smallest and largest live id of a repo,
	// or (0, 0) when the repo holds no items.
	SelectMinMaxID(ctx context.Context, repoID int64) (int64, int64, error)

	// SelectStartTime returns the smallest id created at or after t.
	// Returns ErrItemNotFound if there is none.
	SelectStartTime(ctx context.Context, repoID int64, t time.Time) (int64, error)

	// SelectEndTime returns the largest id created strictly before t.
	// Returns ErrItemNotFound if there is none.
	SelectEndTime(ctx context.Context, repoID int64, t time.Time) (int64, error)

	// SelectByIDs returns the rows that exist; missing ids are dropped.
	SelectByIDs(ctx context.Context, ids []int64) ([]*data.Item, error)

	// SelectFrom returns up to limit items with lower <= id < upper in ascending order.
	SelectFrom(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error)

	// SelectTo returns up to limit items with lower <= id < upper in descending order.
	SelectTo(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error)
}

// ItemWriter creates and mutates item rows.
type ItemWriter interface {
	// CreateItem inserts item and assigns its ID. A zero CreatedAt is set to now.
	CreateItem(ctx context.Context, item *data.Item) error

	// SelectByID returns a live item or ErrItemNotFound.
	SelectByID(ctx context.Context, id int64) (*data.Item, error)

	UpdatePath(ctx context.Context, id int64, path string) error

	UpdateExtend(ctx context.Context, id int64, extend data.Extend) error

	UpdateName(ctx context.Context, id int64, name string) error

	// UpdateRepo reassigns the item to another repo. The path is left as is.
	UpdateRepo(ctx context.Context, id int64, repoID int64) error

	// DeleteItem flags the item as deleted.
	DeleteItem(ctx context.Context, id int64) error

	// RestoreItem clears the deleted flag. Returns ErrItemNotFound if no row has id.
	RestoreItem(ctx context.Context, id int64) error
}

// TagIndex relates items to tags.
type TagIndex interface {
	// SelectItemsByTags returns the distinct ids of items carrying any of tagIDs.
	SelectItemsByTags(ctx context.Context, tagIDs []int64) ([]int64, error)

	// AttachTag is idempotent. Returns ErrTagNotFound for a deleted or unknown
	// tag and ErrItemNotFound for an unknown item.
	AttachTag(ctx context.Context, itemID, tagID int64) error

	// DetachTag returns ErrTagNotFound if the item does not carry the tag.
	DetachTag(ctx context.Context, itemID, tagID int64) error

	// SelectItemTags returns the live tags of an item ordered by id.
	SelectItemTags(ctx context.Context, itemID int64) ([]*data.Tag, error)
}

// TagStore persists the tags of every repo.
type TagStore interface {
	// CreateTag inserts tag and assigns its ID. A zero CreatedAt is set to now.
	CreateTag(ctx context.Context, tag *data.Tag) error

	// SelectTag returns a live tag or ErrTagNotFound.
	SelectTag(ctx context.Context, id int64) (*data.Tag, error)

	// ListTags returns the live tags of a repo ordered by id.
	ListTags(ctx context.Context, repoID int64) ([]*data.Tag, error)

	// UpdateTag stores the name and parent of a live tag.
	UpdateTag(ctx context.Context, tag *data.Tag) error

	// DeleteTag flags the tag as deleted, detaches it from every item and
	// hands its children to its own parent.
	DeleteTag(ctx context.Context, id int64) error
}

// RepoStore persists repositories.
type RepoStore interface {
	// CreateRepo inserts repo and assigns its ID. Returns ErrUsedRepoName on conflict.
	CreateRepo(ctx context.Context, repo *data.Repo) error

	// SelectRepo returns the repo or ErrNoSuchRepo.
	SelectRepo(ctx context.Context, id int64) (*data.Repo, error)

	SelectRepoByName(ctx context.Context, name string) (*data.Repo, error)

	ListRepos(ctx context.Context) ([]*data.Repo, error)

	// UpdateRepoName returns ErrUsedRepoName on conflict and ErrNoSuchRepo if id is unknown.
	UpdateRepoName(ctx context.Context, id int64, name string) error
}

// Store combines every collaborator a media repository needs.
type Store interface {
	Backend
	ItemReader
	ItemWriter
	TagIndex
	TagStore
	RepoStore
}
