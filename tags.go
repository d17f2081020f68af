package mediarepo

import (
	"context"
	"strings"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
)

// CreateTag adds a tag to a repo. A zero parent creates a top-level tag;
// otherwise parent must be a live tag of the same repo.
func (mr *MediaRepository) CreateTag(ctx context.Context, repoID int64, name string, parent int64) (*data.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Invalid("empty tag name")
	}

	if _, err := mr.store.SelectRepo(ctx, repoID); err != nil {
		return nil, err
	}
	if parent != 0 {
		if _, err := mr.repoTag(ctx, repoID, parent); err != nil {
			return nil, err
		}
	}

	tag := &data.Tag{
		Name:   name,
		RepoID: repoID,
		Parent: parent,
	}
	if err := mr.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	mr.log.Debug("Created tag %d '%s' in repo %d", tag.ID, name, repoID)
	return tag, nil
}

func (mr *MediaRepository) Tag(ctx context.Context, id int64) (*data.Tag, error) {
	return mr.store.SelectTag(ctx, id)
}

// Tags returns the live tags of a repo ordered by id.
func (mr *MediaRepository) Tags(ctx context.Context, repoID int64) ([]*data.Tag, error) {
	if _, err := mr.store.SelectRepo(ctx, repoID); err != nil {
		return nil, err
	}
	return mr.store.ListTags(ctx, repoID)
}

func (mr *MediaRepository) RenameTag(ctx context.Context, id int64, name string) (*data.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Invalid("empty tag name")
	}

	tag, err := mr.store.SelectTag(ctx, id)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	if err := mr.store.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ReparentTag moves a tag below parent, or to the top level for a zero
// parent. A tag can never become its own ancestor.
func (mr *MediaRepository) ReparentTag(ctx context.Context, id, parent int64) (*data.Tag, error) {
	tag, err := mr.store.SelectTag(ctx, id)
	if err != nil {
		return nil, err
	}

	for next := parent; next != 0; {
		if next == id {
			return nil, errors.Invalid("tag %d cannot be placed below itself", id)
		}

		ancestor, err := mr.repoTag(ctx, tag.RepoID, next)
		if err != nil {
			return nil, err
		}
		next = ancestor.Parent
	}

	tag.Parent = parent
	if err := mr.store.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes a tag from every item. Its children move up to its parent.
func (mr *MediaRepository) DeleteTag(ctx context.Context, id int64) error {
	if err := mr.store.DeleteTag(ctx, id); err != nil {
		return err
	}

	mr.log.Debug("Deleted tag %d", id)
	return nil
}

// TagItem attaches a tag to a live item of the same repo.
func (mr *MediaRepository) TagItem(ctx context.Context, itemID, tagID int64) error {
	item, err := mr.store.SelectByID(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := mr.repoTag(ctx, item.RepoID, tagID); err != nil {
		return err
	}
	return mr.store.AttachTag(ctx, itemID, tagID)
}

func (mr *MediaRepository) UntagItem(ctx context.Context, itemID, tagID int64) error {
	if _, err := mr.store.SelectByID(ctx, itemID); err != nil {
		return err
	}
	return mr.store.DetachTag(ctx, itemID, tagID)
}

// ItemTags returns the live tags of a live item.
func (mr *MediaRepository) ItemTags(ctx context.Context, itemID int64) ([]*data.Tag, error) {
	if _, err := mr.store.SelectByID(ctx, itemID); err != nil {
		return nil, err
	}
	return mr.store.SelectItemTags(ctx, itemID)
}

// repoTag returns a live tag only if it belongs to repoID.
func (mr *MediaRepository) repoTag(ctx context.Context, repoID, id int64) (*data.Tag, error) {
	tag, err := mr.store.SelectTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.RepoID != repoID {
		return nil, errors.TagNotFound("tag %d is not part of repo %d", id, repoID)
	}
	return tag, nil
}
