package mediarepo

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/metrics"
	"github.com/mwantia/mediarepo/node"
	"github.com/mwantia/mediarepo/query"
	"github.com/mwantia/mediarepo/resource"
	"github.com/mwantia/mediarepo/thumbnail"
)

// MaxListLimit caps the page size of ListItems.
const MaxListLimit = 100

type ListRequest struct {
	RepoID     int64
	Limit      int
	Descending bool
	Conditions []query.Condition
	Filters    query.Filters
}

// CreateItem stages content in the repo's temp directory, detects its type,
// inserts the row and moves the staged file to the path the repo's file
// order derives from the new row.
func (mr *MediaRepository) CreateItem(ctx context.Context, repoID int64, name string, content []byte) (*data.Item, error) {
	repo, res, err := mr.repoResources(ctx, repoID)
	if err != nil {
		return nil, err
	}

	ct, err := data.Sniff(content)
	if err != nil {
		return nil, err
	}

	extend, err := mr.buildExtend(repo, ct, content)
	if err != nil {
		return nil, err
	}

	temp, err := res.CreateTempFile(content)
	if err != nil {
		return nil, err
	}

	item := &data.Item{
		Name:        name,
		ContentType: ct,
		Size:        int64(len(content)),
		RepoID:      repo.ID,
		Extend:      extend,
	}
	if err := mr.store.CreateItem(ctx, item); err != nil {
		mr.discard(temp)
		return nil, err
	}

	item.Path = repo.ItemPath(item)
	if err := mr.persist(ctx, res, temp, item); err != nil {
		mr.discard(temp)
		if derr := mr.store.DeleteItem(ctx, item.ID); derr != nil {
			mr.log.Error("Failed to drop item %d after failed write: %v", item.ID, derr)
		}
		return nil, err
	}

	mr.metrics.ObserveItemCreated(ct.MIME, len(content))
	mr.log.Debug("Created item %d '%s' (%s, %d bytes) at '%s'", item.ID, name, ct, item.Size, item.Path)

	if mr.replica != nil {
		mr.replicatePut(ctx, repo.Name, item, content)
	}

	return item, nil
}

func (mr *MediaRepository) persist(ctx context.Context, res *resource.Store, temp *node.File, item *data.Item) error {
	if err := mr.store.UpdatePath(ctx, item.ID, item.Path); err != nil {
		return err
	}

	target := node.ParseFile(filepath.FromSlash(item.Path))
	_, err := res.Promote(temp, target)
	return err
}

func (mr *MediaRepository) discard(temp *node.File) {
	if err := temp.Remove(); err != nil {
		mr.log.Warn("Failed to remove staged file '%s': %v", temp.AbsolutePath(), err)
	}
}

func (mr *MediaRepository) buildExtend(repo *data.Repo, ct *data.ContentType, content []byte) (data.Extend, error) {
	switch ct.Class {
	case data.FileClassPlain:
		return data.Extend{}, nil
	case data.FileClassImage:
		w, h, err := mr.codec.Size(content)
		if err != nil {
			return data.Extend{}, err
		}
		return repo.NewExtend(w, h), nil
	}
	return data.Extend{}, errors.UnknownContentType(ct.String())
}

// Item returns a live item.
func (mr *MediaRepository) Item(ctx context.Context, id int64) (*data.Item, error) {
	return mr.store.SelectByID(ctx, id)
}

// ListItems returns the next non-empty page of items matching every filter.
// An empty result means the listing is exhausted; pages the filters reject
// entirely are skipped.
func (mr *MediaRepository) ListItems(ctx context.Context, req ListRequest) ([]*data.Item, error) {
	if _, err := mr.store.SelectRepo(ctx, req.RepoID); err != nil {
		return nil, err
	}

	limit := min(max(req.Limit, 1), MaxListLimit)

	cursor := query.NewCursor(mr.store, mr.store, req.RepoID, req.Descending)
	if err := cursor.Init(ctx, req.Conditions...); err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := cursor.Pull(ctx, limit)
		if err != nil {
			return nil, err
		}
		mr.metrics.ObservePull(len(page))
		if len(page) == 0 {
			return page, nil
		}

		pulled := len(page)
		page = req.Filters.Apply(page)
		mr.metrics.ObserveFiltered(pulled - len(page))
		if len(page) > 0 {
			return page, nil
		}

		mr.metrics.ObserveEmptyRetry()
		mr.log.Debug("Filters rejected a page of %d items in repo %d", pulled, req.RepoID)
	}
}

// ReadItem streams the stored bytes of an item.
func (mr *MediaRepository) ReadItem(ctx context.Context, id int64) (*node.Stream, error) {
	item, res, err := mr.itemResources(ctx, id)
	if err != nil {
		return nil, err
	}

	return res.BuildFile(item.Path, item.ContentType).AsStream()
}

// ReadThumbnail streams a preview of an item. Small items are served as is;
// larger images get a JPEG thumbnail that is rendered once and then read from
// the repo cache.
func (mr *MediaRepository) ReadThumbnail(ctx context.Context, id int64) (*node.Stream, error) {
	item, res, err := mr.itemResources(ctx, id)
	if err != nil {
		return nil, err
	}

	origin := res.BuildFile(item.Path, item.ContentType)
	if item.Size <= mr.maxThumbnailSize {
		mr.metrics.ObserveThumbnail(metrics.ThumbnailOriginal)
		return origin.AsStream()
	}

	thumb := res.BuildThumbnailFile(item.Path)
	if thumb.Exists() {
		mr.metrics.ObserveThumbnail(metrics.ThumbnailHit)
		return thumb.AsStream()
	}

	if item.ContentType.Class != data.FileClassImage {
		mr.metrics.ObserveThumbnail(metrics.ThumbnailError)
		return nil, errors.UnknownContentType(item.ContentType.String())
	}

	start := time.Now()
	content, err := thumbnail.Render(mr.codec, origin)
	if err == nil {
		thumb, err = res.WriteThumbnail(item.Path, content)
	}
	if err != nil {
		mr.metrics.ObserveThumbnail(metrics.ThumbnailError)
		return nil, err
	}
	mr.metrics.ObserveThumbnailDuration(time.Since(start))
	mr.metrics.ObserveThumbnail(metrics.ThumbnailGenerated)

	mr.log.Debug("Rendered thumbnail of item %d at '%s'", item.ID, thumb.AbsolutePath())
	return thumb.AsStream()
}

// UpdateExtend replaces the payload of an item, e.g. to record the source url
// of a picture.
func (mr *MediaRepository) UpdateExtend(ctx context.Context, id int64, extend data.Extend) (*data.Item, error) {
	if extend.Picture != nil && extend.Photo != nil {
		return nil, errors.Invalid("item %d: extend carries two payloads", id)
	}

	if err := mr.store.UpdateExtend(ctx, id, extend); err != nil {
		return nil, err
	}
	return mr.store.SelectByID(ctx, id)
}

// RenameItem changes the display name of an item. The stored file keeps its
// id-based name.
func (mr *MediaRepository) RenameItem(ctx context.Context, id int64, name string) (*data.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Invalid("empty item name")
	}

	if err := mr.store.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return mr.store.SelectByID(ctx, id)
}

// MoveItem hands an item over to another repo. The stored file moves to the
// path the target repo's file order derives, the cached thumbnail is dropped
// and tags are detached, since tags belong to a single repo. Moving between
// repos of different kinds converts the payload and keeps the dimensions.
func (mr *MediaRepository) MoveItem(ctx context.Context, id, repoID int64) (*data.Item, error) {
	item, srcRes, err := mr.itemResources(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.RepoID == repoID {
		return item, nil
	}

	src, err := mr.store.SelectRepo(ctx, item.RepoID)
	if err != nil {
		return nil, err
	}
	dst, dstRes, err := mr.repoResources(ctx, repoID)
	if err != nil {
		return nil, err
	}

	tags, err := mr.store.SelectItemTags(ctx, id)
	if err != nil {
		return nil, err
	}

	moved := *item
	moved.RepoID = dst.ID
	moved.Path = dst.ItemPath(&moved)
	if img, ok := item.Extend.Image(); ok && src.Kind != dst.Kind {
		moved.Extend = dst.NewExtend(img.Width, img.Height)
	}

	target, err := dstRes.Adopt(srcRes.BuildFile(item.Path, item.ContentType), moved.Path)
	if err != nil {
		return nil, err
	}

	if err := mr.relocate(ctx, item, &moved); err != nil {
		if _, rerr := srcRes.Adopt(target, item.Path); rerr != nil {
			mr.log.Error("Failed to move item %d back to '%s': %v", id, item.Path, rerr)
		}
		return nil, err
	}

	for _, tag := range tags {
		if err := mr.store.DetachTag(ctx, id, tag.ID); err != nil {
			mr.log.Warn("Failed to detach tag %d from moved item %d: %v", tag.ID, id, err)
		}
	}
	if err := srcRes.BuildThumbnailFile(item.Path).Remove(); err != nil {
		mr.log.Warn("Failed to drop cached thumbnail of item %d: %v", id, err)
	}

	if mr.replica != nil {
		content, err := readFile(target)
		if err != nil {
			mr.log.Warn("Failed to read moved item %d for replication: %v", id, err)
		} else if mr.replicatePut(ctx, dst.Name, &moved, content) == nil {
			mr.replicateRemove(ctx, src.Name, item)
		}
	}

	mr.log.Info("Moved item %d from repo '%s' to '%s'", id, src.Name, dst.Name)
	return mr.store.SelectByID(ctx, id)
}

// relocate stores the repo, path and payload of moved. A failure reverts the
// columns already written.
func (mr *MediaRepository) relocate(ctx context.Context, item, moved *data.Item) error {
	if err := mr.store.UpdateRepo(ctx, item.ID, moved.RepoID); err != nil {
		return err
	}

	err := mr.store.UpdatePath(ctx, item.ID, moved.Path)
	if err == nil && moved.Extend != item.Extend {
		err = mr.store.UpdateExtend(ctx, item.ID, moved.Extend)
	}
	if err == nil {
		return nil
	}

	errs := &errors.Errors{}
	errs.Add(err)
	errs.Add(mr.store.UpdateRepo(ctx, item.ID, item.RepoID))
	errs.Add(mr.store.UpdatePath(ctx, item.ID, item.Path))
	return errs.Errors()
}

// DeleteItem hides an item from every listing. Its files are kept on disk;
// the replica copy is removed.
func (mr *MediaRepository) DeleteItem(ctx context.Context, id int64) error {
	item, err := mr.store.SelectByID(ctx, id)
	if err != nil {
		return err
	}
	if err := mr.store.DeleteItem(ctx, id); err != nil {
		return err
	}

	if mr.replica != nil {
		if repo, err := mr.store.SelectRepo(ctx, item.RepoID); err == nil {
			mr.replicateRemove(ctx, repo.Name, item)
		}
	}

	mr.log.Debug("Deleted item %d", id)
	return nil
}

// RestoreItem makes a deleted item visible again and uploads it back to the
// replica.
func (mr *MediaRepository) RestoreItem(ctx context.Context, id int64) (*data.Item, error) {
	if err := mr.store.RestoreItem(ctx, id); err != nil {
		return nil, err
	}

	item, err := mr.store.SelectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if mr.replica != nil {
		repo, res, err := mr.repoResources(ctx, item.RepoID)
		if err != nil {
			return nil, err
		}
		if content, err := readFile(res.BuildFile(item.Path, item.ContentType)); err != nil {
			mr.log.Warn("Failed to read restored item %d for replication: %v", id, err)
		} else {
			mr.replicatePut(ctx, repo.Name, item, content)
		}
	}

	mr.log.Debug("Restored item %d", id)
	return item, nil
}

func readFile(file *node.File) ([]byte, error) {
	defer file.Close()
	return file.ReadAll()
}

func (mr *MediaRepository) replicatePut(ctx context.Context, repo string, item *data.Item, content []byte) error {
	err := mr.replica.Put(ctx, repo, item, content)
	mr.metrics.ObserveReplica(metrics.ReplicaPut, err)
	if err != nil {
		mr.log.Warn("Failed to replicate item %d to '%s': %v", item.ID, mr.replica.Name(), err)
	}
	return err
}

func (mr *MediaRepository) replicateRemove(ctx context.Context, repo string, item *data.Item) {
	err := mr.replica.Remove(ctx, repo, item)
	mr.metrics.ObserveReplica(metrics.ReplicaRemove, err)
	if err != nil {
		mr.log.Warn("Failed to remove item %d from '%s': %v", item.ID, mr.replica.Name(), err)
	}
}

func (mr *MediaRepository) repoResources(ctx context.Context, repoID int64) (*data.Repo, *resource.Store, error) {
	repo, err := mr.store.SelectRepo(ctx, repoID)
	if err != nil {
		return nil, nil, err
	}

	res, err := mr.resources.GetOrInit(repo.Name)
	if err != nil {
		return nil, nil, err
	}
	return repo, res, nil
}

func (mr *MediaRepository) itemResources(ctx context.Context, id int64) (*data.Item, *resource.Store, error) {
	item, err := mr.store.SelectByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	_, res, err := mr.repoResources(ctx, item.RepoID)
	if err != nil {
		return nil, nil, err
	}
	return item, res, nil
}
