// Package query implements keyset pagination over the items of one repo and
// the predicates applied to each fetched page.
package query

import (
	"context"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
)

type State int

const (
	Uninitialized State = iota
	Initialized
	Pulling
	Exhausted
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Pulling:
		return "pulling"
	case Exhausted:
		return "exhausted"
	}
	return "uninitialized"
}

// Cursor walks the items of one repo in id order. It is not safe for
// concurrent use; one cursor serves one listing.
type Cursor struct {
	reader storage.ItemReader
	tags   storage.TagIndex

	repoID int64
	desc   bool

	// lower is inclusive, upper exclusive.
	lower int64
	upper int64
	// ids is non-nil once a Tags condition fired.
	ids []int64

	state State
}

// NewCursor creates a cursor over repoID. tags may be nil when no Tags
// condition is going to be used.
func NewCursor(reader storage.ItemReader, tags storage.TagIndex, repoID int64, desc bool) *Cursor {
	return &Cursor{
		reader: reader,
		tags:   tags,
		repoID: repoID,
		desc:   desc,
	}
}

func (c *Cursor) State() State {
	return c.state
}

// Init resolves the bounds of the repo and applies conds in order.
func (c *Cursor) Init(ctx context.Context, conds ...Condition) error {
	if c.state != Uninitialized {
		return errors.Invalid("cursor already initialized")
	}

	lo, hi, err := c.reader.SelectMinMaxID(ctx, c.repoID)
	if err != nil {
		return err
	}
	c.lower, c.upper = lo, hi+1

	for _, cond := range conds {
		if err := cond.apply(ctx, c); err != nil {
			return err
		}
	}

	if c.ids != nil {
		storage.SortIDs(c.ids, c.desc)
	}

	c.state = Initialized
	return nil
}

// Pull returns the next page of at most limit items. An empty page marks the
// end of the listing; every later call returns an empty page as well.
func (c *Cursor) Pull(ctx context.Context, limit int) ([]*data.Item, error) {
	switch c.state {
	case Uninitialized:
		return nil, errors.Invalid("cursor pulled before init")
	case Exhausted:
		return []*data.Item{}, nil
	}
	if limit <= 0 {
		return nil, errors.Invalid("limit %d", limit)
	}

	var items []*data.Item
	var err error
	if c.ids != nil {
		items, err = c.pullList(ctx, limit)
	} else {
		items, err = c.pullRange(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		c.state = Exhausted
		return items, nil
	}

	storage.SortItems(items, c.desc)
	last := items[len(items)-1].ID
	if c.desc {
		c.upper = last
	} else {
		c.lower = last + 1
	}

	c.state = Pulling
	return items, nil
}

func (c *Cursor) pullRange(ctx context.Context, limit int) ([]*data.Item, error) {
	if c.lower >= c.upper {
		return []*data.Item{}, nil
	}
	if c.desc {
		return c.reader.SelectTo(ctx, c.repoID, c.lower, c.upper, limit)
	}
	return c.reader.SelectFrom(ctx, c.repoID, c.lower, c.upper, limit)
}

// pullList serves the next chunk of the id list. Chunks whose items are all
// missing are skipped so an empty page still means the list is spent.
func (c *Cursor) pullList(ctx context.Context, limit int) ([]*data.Item, error) {
	for len(c.ids) > 0 {
		n := min(limit, len(c.ids))
		chunk := c.ids[:n]
		c.ids = c.ids[n:]

		items, err := c.reader.SelectByIDs(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	return []*data.Item{}, nil
}
