// Package builtin holds the commands shipped with the mediarepo tool.
package builtin

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/mediarepo/cmd"
	"github.com/mwantia/mediarepo/data"
)

// InitBuiltin registers every builtin command on cm.
func InitBuiltin(cm *cmd.CommandManager) error {
	for _, c := range []cmd.Command{
		&RepoCommand{},
		&PutCommand{},
		&LsCommand{},
		&CatCommand{},
		&ThumbCommand{},
		&TagCommand{},
		&SourceCommand{},
		&RenameCommand{},
		&MvCommand{},
		&RmCommand{},
		&RestoreCommand{},
	} {
		if err := cm.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func resolveRepo(ctx context.Context, api cmd.API, name string) (*data.Repo, error) {
	if name == "" {
		return nil, fmt.Errorf("no repo given")
	}
	return api.RepoByName(ctx, name)
}

func writeItems(writer io.Writer, items []*data.Item) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tDIMENSIONS\tCREATED\tPATH")
	for _, item := range items {
		dims := "-"
		if img, ok := item.Extend.Image(); ok {
			dims = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Name, item.ContentType, humanize.IBytes(uint64(item.Size)), dims,
			item.CreatedAt.Local().Format(time.DateTime), item.Path)
	}
	return tw.Flush()
}
