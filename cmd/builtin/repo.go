package builtin

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/mediarepo/cmd"
	"github.com/mwantia/mediarepo/data"
)

type RepoCommand struct {
}

func (rc *RepoCommand) Name() string {
	return "repo"
}

func (rc *RepoCommand) Description() string {
	return "Create, rename and list repositories"
}

func (rc *RepoCommand) Usage() string {
	return "repo list | repo create [--kind photo|illustration] [--order year|month|date] <name> | repo rename <name> <new-name>"
}

func (rc *RepoCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 1, fmt.Errorf("usage: %s", rc.Usage())
	}

	switch args.Args[0] {
	case "list", "ls":
		return rc.list(ctx, api, writer)
	case "create":
		if len(args.Args) != 2 {
			return 1, fmt.Errorf("usage: %s", rc.Usage())
		}

		kind, err := data.ParseRepoKind(args.String("kind"))
		if err != nil {
			return 1, err
		}
		order, err := data.ParseFileOrder(args.String("order"))
		if err != nil {
			return 1, err
		}

		repo, err := api.CreateRepo(ctx, args.Args[1], kind, order)
		if err != nil {
			return 1, err
		}
		fmt.Fprintf(writer, "created repo %d '%s'\n", repo.ID, repo.Name)
		return 0, nil
	case "rename", "mv":
		if len(args.Args) != 3 {
			return 1, fmt.Errorf("usage: %s", rc.Usage())
		}

		repo, err := resolveRepo(ctx, api, args.Args[1])
		if err != nil {
			return 1, err
		}
		if _, err := api.RenameRepo(ctx, repo.ID, args.Args[2]); err != nil {
			return 1, err
		}
		fmt.Fprintf(writer, "renamed repo '%s' to '%s'\n", args.Args[1], args.Args[2])
		return 0, nil
	}

	return 1, fmt.Errorf("unknown repo action '%s'", args.Args[0])
}

func (rc *RepoCommand) list(ctx context.Context, api cmd.API, writer io.Writer) (int, error) {
	repos, err := api.Repos(ctx)
	if err != nil {
		return 1, err
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tORDER\tCREATED")
	for _, repo := range repos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", repo.ID, repo.Name, repo.Kind, repo.Order,
			humanize.Time(repo.CreatedAt))
	}
	return 0, tw.Flush()
}

func (rc *RepoCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"kind": {
				Name:        "kind",
				Short:       "k",
				Type:        cmd.FlagString,
				Default:     "photo",
				Description: "Repository kind, photo or illustration",
			},
			"order": {
				Name:        "order",
				Short:       "o",
				Type:        cmd.FlagString,
				Default:     "month",
				Description: "Directory layout of stored items: year, month or date",
			},
		},
	}
}
