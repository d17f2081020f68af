package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/mediarepo/cmd"
	"github.com/mwantia/mediarepo/data"
)

type SourceCommand struct {
}

func (sc *SourceCommand) Name() string {
	return "source"
}

func (sc *SourceCommand) Description() string {
	return "Record the author and source url of a picture"
}

func (sc *SourceCommand) Usage() string {
	return "source [--author id] [--url url] <id>"
}

func (sc *SourceCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	id, err := args.ArgInt(0)
	if err != nil || len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", sc.Usage())
	}

	item, err := api.Item(ctx, id)
	if err != nil {
		return 1, err
	}
	if item.Extend.Picture == nil {
		return 1, fmt.Errorf("item %d is not a picture", id)
	}

	extend := data.Extend{Picture: item.Extend.Picture}
	if author, ok := args.Int("author"); ok {
		extend.Picture.Author = &author
	}
	if url := args.String("url"); url != "" {
		extend.Picture.URL = &url
	}

	if _, err := api.UpdateExtend(ctx, id, extend); err != nil {
		return 1, err
	}
	return 0, nil
}

func (sc *SourceCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"author": {Name: "author", Type: cmd.FlagInt, Description: "Author id"},
			"url":    {Name: "url", Type: cmd.FlagString, Description: "Source url"},
		},
	}
}

type RmCommand struct {
}

func (rc *RmCommand) Name() string {
	return "rm"
}

func (rc *RmCommand) Description() string {
	return "Hide items from every listing"
}

func (rc *RmCommand) Usage() string {
	return "rm <id>..."
}

func (rc *RmCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", rc.Usage())
	}

	for i := range args.Args {
		id, err := args.ArgInt(i)
		if err != nil {
			return 1, fmt.Errorf("invalid item id '%s'", args.Args[i])
		}
		if err := api.DeleteItem(ctx, id); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func (rc *RmCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type MvCommand struct {
}

func (mc *MvCommand) Name() string {
	return "mv"
}

func (mc *MvCommand) Description() string {
	return "Move items to another repository"
}

func (mc *MvCommand) Usage() string {
	return "mv <id>... <repo>"
}

func (mc *MvCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 2 {
		return 1, fmt.Errorf("usage: %s", mc.Usage())
	}

	repo, err := resolveRepo(ctx, api, args.Args[len(args.Args)-1])
	if err != nil {
		return 1, err
	}

	for i := range len(args.Args) - 1 {
		id, err := args.ArgInt(i)
		if err != nil {
			return 1, fmt.Errorf("invalid item id '%s'", args.Args[i])
		}

		item, err := api.MoveItem(ctx, id, repo.ID)
		if err != nil {
			return 1, err
		}
		fmt.Fprintf(writer, "moved item %d to '%s' at '%s'\n", item.ID, repo.Name, item.Path)
	}
	return 0, nil
}

func (mc *MvCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type RenameCommand struct {
}

func (rc *RenameCommand) Name() string {
	return "rename"
}

func (rc *RenameCommand) Description() string {
	return "Change the display name of an item"
}

func (rc *RenameCommand) Usage() string {
	return "rename <id> <name>"
}

func (rc *RenameCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	id, err := args.ArgInt(0)
	if err != nil || len(args.Args) != 2 {
		return 1, fmt.Errorf("usage: %s", rc.Usage())
	}

	if _, err := api.RenameItem(ctx, id, args.Args[1]); err != nil {
		return 1, err
	}
	return 0, nil
}

func (rc *RenameCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type RestoreCommand struct {
}

func (rc *RestoreCommand) Name() string {
	return "restore"
}

func (rc *RestoreCommand) Description() string {
	return "Bring deleted items back into listings"
}

func (rc *RestoreCommand) Usage() string {
	return "restore <id>..."
}

func (rc *RestoreCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", rc.Usage())
	}

	for i := range args.Args {
		id, err := args.ArgInt(i)
		if err != nil {
			return 1, fmt.Errorf("invalid item id '%s'", args.Args[i])
		}
		if _, err := api.RestoreItem(ctx, id); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func (rc *RestoreCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
