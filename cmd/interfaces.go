package cmd

import (
	"context"
	"io"

	"github.com/mwantia/mediarepo"
	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/node"
)

// API is the part of a media repository commands operate on.
type API interface {
	CreateRepo(ctx context.Context, name string, kind data.RepoKind, order data.FileOrder) (*data.Repo, error)
	RenameRepo(ctx context.Context, id int64, name string) (*data.Repo, error)
	RepoByName(ctx context.Context, name string) (*data.Repo, error)
	Repos(ctx context.Context) ([]*data.Repo, error)

	CreateItem(ctx context.Context, repoID int64, name string, content []byte) (*data.Item, error)
	Item(ctx context.Context, id int64) (*data.Item, error)
	ListItems(ctx context.Context, req mediarepo.ListRequest) ([]*data.Item, error)
	ReadItem(ctx context.Context, id int64) (*node.Stream, error)
	ReadThumbnail(ctx context.Context, id int64) (*node.Stream, error)
	UpdateExtend(ctx context.Context, id int64, extend data.Extend) (*data.Item, error)
	RenameItem(ctx context.Context, id int64, name string) (*data.Item, error)
	MoveItem(ctx context.Context, id, repoID int64) (*data.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	RestoreItem(ctx context.Context, id int64) (*data.Item, error)

	CreateTag(ctx context.Context, repoID int64, name string, parent int64) (*data.Tag, error)
	Tags(ctx context.Context, repoID int64) ([]*data.Tag, error)
	RenameTag(ctx context.Context, id int64, name string) (*data.Tag, error)
	ReparentTag(ctx context.Context, id, parent int64) (*data.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
	TagItem(ctx context.Context, itemID, tagID int64) error
	UntagItem(ctx context.Context, itemID, tagID int64) error
	ItemTags(ctx context.Context, itemID int64) ([]*data.Tag, error)
}

var _ API = (*mediarepo.MediaRepository)(nil)

// Command represents an executable command.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls [--desc] <repo>")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}
