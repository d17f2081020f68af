package builtin

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/mediarepo/cmd"
	"github.com/mwantia/mediarepo/data"
)

type TagCommand struct {
}

func (tc *TagCommand) Name() string {
	return "tag"
}

func (tc *TagCommand) Description() string {
	return "Manage tags and attach them to items"
}

func (tc *TagCommand) Usage() string {
	return strings.Join([]string{
		"tag create [--parent id] <repo> <name>",
		"tag ls <repo>",
		"tag rm <tag-id>...",
		"tag rename <tag-id> <name>",
		"tag parent <tag-id> <parent-id|0>",
		"tag add <item-id> <tag-id>...",
		"tag del <item-id> <tag-id>...",
		"tag item <item-id>",
	}, " | ")
}

func (tc *TagCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", tc.Usage())
	}

	rest := args.Args[1:]
	switch args.Args[0] {
	case "create":
		if len(rest) != 2 {
			return 1, fmt.Errorf("usage: %s", tc.Usage())
		}

		repo, err := resolveRepo(ctx, api, rest[0])
		if err != nil {
			return 1, err
		}
		parent, _ := args.Int("parent")

		tag, err := api.CreateTag(ctx, repo.ID, rest[1], parent)
		if err != nil {
			return 1, err
		}
		fmt.Fprintf(writer, "created tag %d '%s'\n", tag.ID, tag.Name)
		return 0, nil
	case "ls", "list":
		if len(rest) != 1 {
			return 1, fmt.Errorf("usage: %s", tc.Usage())
		}

		repo, err := resolveRepo(ctx, api, rest[0])
		if err != nil {
			return 1, err
		}
		tags, err := api.Tags(ctx, repo.ID)
		if err != nil {
			return 1, err
		}
		return 0, writeTags(writer, tags)
	case "rm":
		ids, err := parseIDs(rest, "tag")
		if err != nil || len(ids) == 0 {
			return 1, fmt.Errorf("usage: %s", tc.Usage())
		}

		for _, id := range ids {
			if err := api.DeleteTag(ctx, id); err != nil {
				return 1, err
			}
		}
		return 0, nil
	case "rename":
		ids, err := parseIDs(rest[:min(len(rest), 1)], "tag")
		if err != nil || len(rest) != 2 {
			return 1, fmt.Errorf("usage: %s", tc.Usage())
		}

		if _, err := api.RenameTag(ctx, ids[0], rest[1]); err != nil {
			return 1, err
		}
		return 0, nil
	case "parent":
		ids, err := parseIDs(rest, "tag")
		if err != nil || len(ids) != 2 {
			return 1, fmt.Errorf("usage: %s", tc.Usage())
		}

		if _, err := api.ReparentTag(ctx, ids[0], ids[1]); err != nil {
			return 1, err
		}
		return 0, nil
	case "add", "del":
		ids, err := parseIDs(rest, "item or tag")
		if err != nil {
			return 1, err
		}
		if len(ids) < 2 {
			return 1, fmt.Errorf("usage: %s", tc.Usage())
		}

		apply, verb := api.TagItem, "tagged"
		if args.Args[0] == "del" {
			apply, verb = api.UntagItem, "untagged"
		}
		for _, tag := range ids[1:] {
			if err := apply(ctx, ids[0], tag); err != nil {
				return 1, err
			}
		}
		fmt.Fprintf(writer, "%s item %d with %d tags\n", verb, ids[0], len(ids)-1)
		return 0, nil
	case "item":
		ids, err := parseIDs(rest, "item")
		if err != nil || len(ids) != 1 {
			return 1, fmt.Errorf("usage: %s", tc.Usage())
		}

		tags, err := api.ItemTags(ctx, ids[0])
		if err != nil {
			return 1, err
		}
		return 0, writeTags(writer, tags)
	}

	return 1, fmt.Errorf("unknown tag action '%s'", args.Args[0])
}

func (tc *TagCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"parent": {
				Name:        "parent",
				Short:       "p",
				Type:        cmd.FlagInt,
				Description: "Id of the parent tag",
			},
		},
	}
}

func parseIDs(raw []string, what string) ([]int64, error) {
	args := &cmd.CommandArgs{Args: raw}

	ids := make([]int64, len(raw))
	for i := range raw {
		id, err := args.ArgInt(i)
		if err != nil {
			return nil, fmt.Errorf("invalid %s id '%s'", what, raw[i])
		}
		ids[i] = id
	}
	return ids, nil
}

func writeTags(writer io.Writer, tags []*data.Tag) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPARENT\tCREATED")
	for _, tag := range tags {
		parent := "-"
		if tag.Parent != 0 {
			parent = fmt.Sprint(tag.Parent)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", tag.ID, tag.Name, parent, humanize.Time(tag.CreatedAt))
	}
	return tw.Flush()
}
