package builtin

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mwantia/mediarepo"
	"github.com/mwantia/mediarepo/cmd"
	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/query"
)

type LsCommand struct {
}

// Name returns the command identifier
func (ls *LsCommand) Name() string {
	return "ls"
}

// Description returns human-readable help text
func (ls *LsCommand) Description() string {
	return "List the items of a repository"
}

// Usage returns a usage string for help
func (ls *LsCommand) Usage() string {
	return "ls [-d] [-a] [-n limit] [--start id] [--end id] [--after time] [--before time] [-t tag]... [--rect shape] [--min-w px] [--max-w px] [--min-h px] [--max-h px] [--url text --url-mode mode] <repo>"
}

// Execute runs the command with parsed arguments
// Returns exit code (0 = success) and error message
func (ls *LsCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 1, fmt.Errorf("usage: %s", ls.Usage())
	}

	repo, err := resolveRepo(ctx, api, args.Args[0])
	if err != nil {
		return 1, err
	}

	conds, err := conditions(args)
	if err != nil {
		return 1, err
	}
	filters, err := filters(args)
	if err != nil {
		return 1, err
	}

	limit, _ := args.Int("limit")
	req := mediarepo.ListRequest{
		RepoID:     repo.ID,
		Limit:      int(limit),
		Descending: args.Bool("desc"),
		Conditions: conds,
		Filters:    filters,
	}

	var items []*data.Item
	for {
		page, err := api.ListItems(ctx, req)
		if err != nil {
			return 1, err
		}
		items = append(items, page...)

		if !args.Bool("all") || len(page) == 0 || len(args.Ints("tag")) > 0 {
			break
		}

		// Continue after the last id of the page.
		last := page[len(page)-1].ID
		if req.Descending {
			req.Conditions = append(conds, query.EndID{ID: last})
		} else {
			req.Conditions = append(conds, query.StartID{ID: last + 1})
		}
	}

	return 0, writeItems(writer, items)
}

func conditions(args *cmd.CommandArgs) ([]query.Condition, error) {
	var conds []query.Condition

	if id, ok := args.Int("start"); ok {
		conds = append(conds, query.StartID{ID: id})
	}
	if id, ok := args.Int("end"); ok {
		conds = append(conds, query.EndID{ID: id})
	}

	for _, flag := range []string{"after", "before"} {
		value := args.String(flag)
		if value == "" {
			continue
		}

		t, err := parseTime(value)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
		if flag == "after" {
			conds = append(conds, query.StartTime{Time: t})
		} else {
			conds = append(conds, query.EndTime{Time: t})
		}
	}

	for _, tag := range args.Ints("tag") {
		conds = append(conds, query.Tags{IDs: []int64{tag}})
	}
	return conds, nil
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time '%s'", value)
}

var urlModes = map[string]query.Compare{
	"exact":    query.Exactly,
	"prefix":   query.Prefix,
	"suffix":   query.Suffix,
	"includes": query.Includes,
	"excludes": query.Excludes,
}

func filters(args *cmd.CommandArgs) (query.Filters, error) {
	var fs query.Filters

	var size query.SizeFilter
	bounds := map[string]**uint32{
		"min-w": &size.MinWidth,
		"max-w": &size.MaxWidth,
		"min-h": &size.MinHeight,
		"max-h": &size.MaxHeight,
	}
	sized := false
	for flag, bound := range bounds {
		if v, ok := args.Int(flag); ok {
			if v < 0 {
				return nil, fmt.Errorf("--%s must not be negative", flag)
			}
			px := uint32(v)
			*bound = &px
			sized = true
		}
	}
	if sized {
		fs = append(fs, size)
	}

	if name := args.String("rect"); name != "" {
		rect, ok := query.ParseRectangle(name)
		if !ok {
			return nil, fmt.Errorf("unknown rectangle '%s'", name)
		}
		fs = append(fs, query.RectangleFilter{Rectangle: rect})
	}

	if url := args.String("url"); url != "" {
		mode, ok := urlModes[args.String("url-mode")]
		if !ok {
			return nil, fmt.Errorf("unknown url mode '%s'", args.String("url-mode"))
		}
		fs = append(fs, query.URLFilter{URL: url, Compare: mode})
	}

	return fs, nil
}

// GetFlags returns the flag set for this command
func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"desc":     {Name: "desc", Short: "d", Type: cmd.FlagBool, Description: "Newest items first"},
			"all":      {Name: "all", Short: "a", Type: cmd.FlagBool, Description: "Page through the whole range"},
			"limit":    {Name: "limit", Short: "n", Type: cmd.FlagInt, Default: int64(20), Description: "Page size, at most 100"},
			"start":    {Name: "start", Type: cmd.FlagInt, Description: "Lowest item id"},
			"end":      {Name: "end", Type: cmd.FlagInt, Description: "Item id to stop before"},
			"after":    {Name: "after", Type: cmd.FlagString, Description: "Items created at or after this time"},
			"before":   {Name: "before", Type: cmd.FlagString, Description: "Stop at the last item created before this time, exclusive"},
			"tag":      {Name: "tag", Short: "t", Type: cmd.FlagInt, Multiple: true, Description: "Items carrying this tag, repeat to intersect"},
			"rect":     {Name: "rect", Type: cmd.FlagString, Description: "landscape, portrait, nearly-square, square, 1080p, 1440p or 2160p"},
			"min-w":    {Name: "min-w", Type: cmd.FlagInt, Description: "Minimum width in pixels"},
			"max-w":    {Name: "max-w", Type: cmd.FlagInt, Description: "Maximum width in pixels"},
			"min-h":    {Name: "min-h", Type: cmd.FlagInt, Description: "Minimum height in pixels"},
			"max-h":    {Name: "max-h", Type: cmd.FlagInt, Description: "Maximum height in pixels"},
			"url":      {Name: "url", Type: cmd.FlagString, Description: "Match the source url of pictures"},
			"url-mode": {Name: "url-mode", Type: cmd.FlagString, Default: "includes", Description: "exact, prefix, suffix, includes or excludes"},
		},
	}
}
