package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mwantia/mediarepo/cmd"
	"github.com/mwantia/mediarepo/node"
)

type CatCommand struct {
}

func (cc *CatCommand) Name() string {
	return "cat"
}

func (cc *CatCommand) Description() string {
	return "Write the stored bytes of an item"
}

func (cc *CatCommand) Usage() string {
	return "cat [-o file] <id>"
}

func (cc *CatCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	id, err := args.ArgInt(0)
	if err != nil || len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", cc.Usage())
	}

	stream, err := api.ReadItem(ctx, id)
	if err != nil {
		return 1, err
	}
	return copyStream(stream, args.String("output"), writer)
}

func (cc *CatCommand) GetFlags() *cmd.CommandFlagSet {
	return outputFlags()
}

type ThumbCommand struct {
}

func (tc *ThumbCommand) Name() string {
	return "thumb"
}

func (tc *ThumbCommand) Description() string {
	return "Write the thumbnail of an item, rendering it on first use"
}

func (tc *ThumbCommand) Usage() string {
	return "thumb [-o file] <id>"
}

func (tc *ThumbCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	id, err := args.ArgInt(0)
	if err != nil || len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", tc.Usage())
	}

	stream, err := api.ReadThumbnail(ctx, id)
	if err != nil {
		return 1, err
	}
	return copyStream(stream, args.String("output"), writer)
}

func (tc *ThumbCommand) GetFlags() *cmd.CommandFlagSet {
	return outputFlags()
}

func outputFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"output": {
				Name:        "output",
				Short:       "o",
				Type:        cmd.FlagString,
				Description: "Write to this file instead of stdout",
			},
		},
	}
}

// copyStream drains stream into output, or writer when output is empty.
func copyStream(stream *node.Stream, output string, writer io.Writer) (int, error) {
	defer stream.Close()

	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return 1, err
		}
		defer file.Close()
		writer = file
	}

	if _, err := stream.WriteTo(writer); err != nil {
		return 1, err
	}
	return 0, nil
}
