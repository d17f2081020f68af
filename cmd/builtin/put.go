package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/mediarepo/cmd"
)

type PutCommand struct {
}

func (pc *PutCommand) Name() string {
	return "put"
}

func (pc *PutCommand) Description() string {
	return "Store local files as items of a repository"
}

func (pc *PutCommand) Usage() string {
	return "put [--name name] <repo> <file>..."
}

func (pc *PutCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 2 {
		return 1, fmt.Errorf("usage: %s", pc.Usage())
	}

	repo, err := resolveRepo(ctx, api, args.Args[0])
	if err != nil {
		return 1, err
	}

	files := args.Args[1:]
	name := args.String("name")
	if name != "" && len(files) > 1 {
		return 1, fmt.Errorf("--name requires a single file")
	}

	failed := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(writer, "%s: %v\n", path, err)
			failed++
			continue
		}

		itemName := name
		if itemName == "" {
			itemName = filepath.Base(path)
		}

		item, err := api.CreateItem(ctx, repo.ID, itemName, content)
		if err != nil {
			fmt.Fprintf(writer, "%s: %v\n", path, err)
			failed++
			continue
		}

		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", item.ID, item.ContentType, humanize.IBytes(uint64(item.Size)), item.Path)
	}

	if failed > 0 {
		return 1, fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return 0, nil
}

func (pc *PutCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"name": {
				Name:        "name",
				Type:        cmd.FlagString,
				Description: "Item name, defaults to the file name",
			},
		},
	}
}
