package ephemeral

import (
	"context"
	"time"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
)

func (eb *EphemeralBackend) SelectMinMaxID(ctx context.Context, repoID int64) (int64, int64, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	var lo, hi int64
	eb.items.Scan(func(id int64, item *data.Item) bool {
		if item.RepoID == repoID && !item.IsDeleted {
			if lo == 0 {
				lo = id
			}
			hi = id
		}
		return true
	})

	return lo, hi, nil
}

func (eb *EphemeralBackend) SelectStartTime(ctx context.Context, repoID int64, t time.Time) (int64, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	ts := t.Unix()
	var found int64
	eb.items.Scan(func(id int64, item *data.Item) bool {
		if item.RepoID == repoID && !item.IsDeleted && item.CreatedAt.Unix() >= ts {
			found = id
			return false
		}
		return true
	})

	if found == 0 {
		return 0, errors.ItemNotFound(0)
	}
	return found, nil
}

func (eb *EphemeralBackend) SelectEndTime(ctx context.Context, repoID int64, t time.Time) (int64, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	ts := t.Unix()
	var found int64
	eb.items.Reverse(func(id int64, item *data.Item) bool {
		if item.RepoID == repoID && !item.IsDeleted && item.CreatedAt.Unix() < ts {
			found = id
			return false
		}
		return true
	})

	if found == 0 {
		return 0, errors.ItemNotFound(0)
	}
	return found, nil
}

func (eb *EphemeralBackend) SelectByIDs(ctx context.Context, ids []int64) ([]*data.Item, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	items := make([]*data.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := eb.items.Get(id); ok && !item.IsDeleted {
			items = append(items, cloneItem(item))
		}
	}

	return items, nil
}

func (eb *EphemeralBackend) SelectFrom(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	items := make([]*data.Item, 0)
	eb.items.Ascend(lower, func(id int64, item *data.Item) bool {
		if id >= upper || len(items) >= limit {
			return false
		}
		if item.RepoID == repoID && !item.IsDeleted {
			items = append(items, cloneItem(item))
		}
		return true
	})

	return items, nil
}

func (eb *EphemeralBackend) SelectTo(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	items := make([]*data.Item, 0)
	if upper <= lower {
		return items, nil
	}

	eb.items.Descend(upper-1, func(id int64, item *data.Item) bool {
		if id < lower || len(items) >= limit {
			return false
		}
		if item.RepoID == repoID && !item.IsDeleted {
			items = append(items, cloneItem(item))
		}
		return true
	})

	return items, nil
}

func (eb *EphemeralBackend) CreateItem(ctx context.Context, item *data.Item) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if _, err := data.TimeToUnix(item.CreatedAt); err != nil {
		return err
	}
	if item.ContentType == nil {
		item.ContentType = data.ContentTypeUnknown
	}

	eb.nextItemID++
	item.ID = eb.nextItemID
	item.IsDeleted = false

	eb.items.Set(item.ID, cloneItem(item))
	return nil
}

func (eb *EphemeralBackend) SelectByID(ctx context.Context, id int64) (*data.Item, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	item, ok := eb.items.Get(id)
	if !ok || item.IsDeleted {
		return nil, errors.ItemNotFound(id)
	}

	return cloneItem(item), nil
}

func (eb *EphemeralBackend) UpdatePath(ctx context.Context, id int64, path string) error {
	return eb.updateItem(id, func(item *data.Item) {
		item.Path = path
	})
}

func (eb *EphemeralBackend) UpdateExtend(ctx context.Context, id int64, extend data.Extend) error {
	return eb.updateItem(id, func(item *data.Item) {
		item.Extend = extend
		*item = *cloneItem(item)
	})
}

func (eb *EphemeralBackend) UpdateName(ctx context.Context, id int64, name string) error {
	return eb.updateItem(id, func(item *data.Item) {
		item.Name = name
	})
}

func (eb *EphemeralBackend) UpdateRepo(ctx context.Context, id int64, repoID int64) error {
	return eb.updateItem(id, func(item *data.Item) {
		item.RepoID = repoID
	})
}

func (eb *EphemeralBackend) DeleteItem(ctx context.Context, id int64) error {
	return eb.updateItem(id, func(item *data.Item) {
		item.IsDeleted = true
	})
}

func (eb *EphemeralBackend) RestoreItem(ctx context.Context, id int64) error {
	return eb.updateItem(id, func(item *data.Item) {
		item.IsDeleted = false
	})
}

func (eb *EphemeralBackend) updateItem(id int64, apply func(item *data.Item)) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	item, ok := eb.items.Get(id)
	if !ok {
		return errors.ItemNotFound(id)
	}

	apply(item)
	return nil
}
