package ephemeral

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
)

func (eb *EphemeralBackend) CreateTag(ctx context.Context, tag *data.Tag) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}

	eb.nextTagID++
	tag.ID = eb.nextTagID
	tag.IsDeleted = false

	eb.tags[tag.ID] = cloneTag(tag)
	return nil
}

func (eb *EphemeralBackend) SelectTag(ctx context.Context, id int64) (*data.Tag, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	tag, ok := eb.liveTag(id)
	if !ok {
		return nil, errors.TagNotFound("id %d", id)
	}

	return cloneTag(tag), nil
}

func (eb *EphemeralBackend) ListTags(ctx context.Context, repoID int64) ([]*data.Tag, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	tags := make([]*data.Tag, 0)
	for _, tag := range eb.tags {
		if tag.RepoID == repoID && !tag.IsDeleted {
			tags = append(tags, cloneTag(tag))
		}
	}

	sortTags(tags)
	return tags, nil
}

func (eb *EphemeralBackend) UpdateTag(ctx context.Context, tag *data.Tag) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	stored, ok := eb.liveTag(tag.ID)
	if !ok {
		return errors.TagNotFound("id %d", tag.ID)
	}

	stored.Name = tag.Name
	stored.Parent = tag.Parent
	return nil
}

func (eb *EphemeralBackend) DeleteTag(ctx context.Context, id int64) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	tag, ok := eb.liveTag(id)
	if !ok {
		return errors.TagNotFound("id %d", id)
	}

	tag.IsDeleted = true
	for _, child := range eb.tags {
		if child.Parent == id && !child.IsDeleted {
			child.Parent = tag.Parent
		}
	}

	delete(eb.relations, id)
	return nil
}

func (eb *EphemeralBackend) SelectItemsByTags(ctx context.Context, tagIDs []int64) ([]int64, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	seen := make(map[int64]struct{})
	for _, tagID := range tagIDs {
		for itemID := range eb.relations[tagID] {
			seen[itemID] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (eb *EphemeralBackend) AttachTag(ctx context.Context, itemID, tagID int64) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if _, ok := eb.liveTag(tagID); !ok {
		return errors.TagNotFound("id %d", tagID)
	}
	if _, ok := eb.items.Get(itemID); !ok {
		return errors.ItemNotFound(itemID)
	}

	if eb.relations[tagID] == nil {
		eb.relations[tagID] = make(map[int64]struct{})
	}
	eb.relations[tagID][itemID] = struct{}{}
	return nil
}

func (eb *EphemeralBackend) DetachTag(ctx context.Context, itemID, tagID int64) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	items := eb.relations[tagID]
	if _, ok := items[itemID]; !ok {
		return errors.TagNotFound("tag %d on item %d", tagID, itemID)
	}

	delete(items, itemID)
	return nil
}

func (eb *EphemeralBackend) SelectItemTags(ctx context.Context, itemID int64) ([]*data.Tag, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	tags := make([]*data.Tag, 0)
	for tagID, items := range eb.relations {
		if _, ok := items[itemID]; !ok {
			continue
		}
		if tag, ok := eb.liveTag(tagID); ok {
			tags = append(tags, cloneTag(tag))
		}
	}

	sortTags(tags)
	return tags, nil
}

// liveTag must be called with eb.mu held.
func (eb *EphemeralBackend) liveTag(id int64) (*data.Tag, bool) {
	tag, ok := eb.tags[id]
	if !ok || tag.IsDeleted {
		return nil, false
	}
	return tag, true
}

func sortTags(tags []*data.Tag) {
	slices.SortFunc(tags, func(a, b *data.Tag) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
