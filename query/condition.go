package query

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mwantia/mediarepo/data/errors"
)

// Condition narrows the range a Cursor reads. Conditions are applied in the
// order they are passed to Init.
type Condition interface {
	apply(ctx context.Context, c *Cursor) error
}

// StartID raises the inclusive lower bound to ID.
type StartID struct {
	ID int64 `json:"id"`
}

// EndID lowers the exclusive upper bound to ID.
type EndID struct {
	ID int64 `json:"id"`
}

// StartTime raises the lower bound to the first item created at or after Time.
type StartTime struct {
	Time time.Time `json:"time"`
}

// EndTime lowers the upper bound to the last item created before Time. As
// with EndID, the bound is exclusive, so that item is not served.
type EndTime struct {
	Time time.Time `json:"time"`
}

// Tags restricts the cursor to items carrying any of IDs. Several Tags
// conditions intersect. Once set, the id list is served as is and scalar
// bounds no longer apply to it.
type Tags struct {
	IDs []int64 `json:"tags"`
}

func (s StartID) apply(_ context.Context, c *Cursor) error {
	c.lower = max(c.lower, s.ID)
	return nil
}

func (e EndID) apply(_ context.Context, c *Cursor) error {
	c.upper = min(c.upper, e.ID)
	return nil
}

func (s StartTime) apply(ctx context.Context, c *Cursor) error {
	id, err := c.reader.SelectStartTime(ctx, c.repoID, s.Time)
	if err != nil {
		if stderrors.Is(err, errors.ErrItemNotFound) {
			// Nothing created since Time: empty range.
			c.lower = c.upper
			return nil
		}
		return err
	}

	c.lower = max(c.lower, id)
	return nil
}

func (e EndTime) apply(ctx context.Context, c *Cursor) error {
	id, err := c.reader.SelectEndTime(ctx, c.repoID, e.Time)
	if err != nil {
		if stderrors.Is(err, errors.ErrItemNotFound) {
			c.upper = c.lower
			return nil
		}
		return err
	}

	c.upper = min(c.upper, id)
	return nil
}

func (t Tags) apply(ctx context.Context, c *Cursor) error {
	if c.tags == nil {
		return errors.Invalid("tag condition without tag index")
	}

	ids, err := c.tags.SelectItemsByTags(ctx, t.IDs)
	if err != nil {
		return err
	}

	if c.ids == nil {
		c.ids = append(make([]int64, 0, len(ids)), ids...)
		return nil
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	kept := make([]int64, 0, len(c.ids))
	for _, id := range c.ids {
		if _, ok := set[id]; ok {
			kept = append(kept, id)
		}
	}
	c.ids = kept
	return nil
}
