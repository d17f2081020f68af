package mediarepo

import (
	"context"
	stderrors "errors"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/query"
)

// CreateRepo stores a new repo and creates its directories.
func (mr *MediaRepository) CreateRepo(ctx context.Context, name string, kind data.RepoKind, order data.FileOrder) (*data.Repo, error) {
	if err := validateRepoName(name); err != nil {
		return nil, err
	}

	repo := &data.Repo{
		Name:  name,
		Kind:  kind,
		Order: order,
	}
	if err := mr.store.CreateRepo(ctx, repo); err != nil {
		return nil, err
	}

	if _, err := mr.resources.GetOrInit(name); err != nil {
		return nil, err
	}

	mr.log.Info("Created %s repo '%s' ordered by %s", kind, name, order)
	return repo, nil
}

func (mr *MediaRepository) Repo(ctx context.Context, id int64) (*data.Repo, error) {
	return mr.store.SelectRepo(ctx, id)
}

func (mr *MediaRepository) RepoByName(ctx context.Context, name string) (*data.Repo, error) {
	return mr.store.SelectRepoByName(ctx, name)
}

func (mr *MediaRepository) Repos(ctx context.Context) ([]*data.Repo, error) {
	return mr.store.ListRepos(ctx)
}

// RenameRepo renames the repo directory first and the stored row second. A
// failed row update moves the directory back.
func (mr *MediaRepository) RenameRepo(ctx context.Context, id int64, name string) (*data.Repo, error) {
	if err := validateRepoName(name); err != nil {
		return nil, err
	}

	repo, err := mr.store.SelectRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	if repo.Name == name {
		return repo, nil
	}

	if _, err := mr.store.SelectRepoByName(ctx, name); err == nil {
		return nil, errors.UsedRepoName(name)
	} else if !stderrors.Is(err, errors.ErrNoSuchRepo) {
		return nil, err
	}

	old := repo.Name
	if err := mr.resources.RenameRepo(old, name); err != nil {
		return nil, err
	}

	if err := mr.store.UpdateRepoName(ctx, id, name); err != nil {
		if rerr := mr.resources.RenameRepo(name, old); rerr != nil {
			mr.log.Error("Failed to restore repo directory '%s': %v", old, rerr)
		}
		return nil, err
	}

	repo.Name = name
	if mr.replica != nil {
		mr.rekeyReplica(ctx, repo, old)
	}

	mr.log.Info("Renamed repo '%s' to '%s'", old, name)
	return repo, nil
}

// rekeyReplica moves the replica copies of every live item of repo from keys
// below old to keys below the current name. Failures are logged; the local
// rename stands.
func (mr *MediaRepository) rekeyReplica(ctx context.Context, repo *data.Repo, old string) {
	res, err := mr.resources.GetOrInit(repo.Name)
	if err != nil {
		mr.log.Warn("Failed to open repo '%s' for replication: %v", repo.Name, err)
		return
	}

	cursor := query.NewCursor(mr.store, nil, repo.ID, false)
	if err := cursor.Init(ctx); err != nil {
		mr.log.Warn("Failed to list repo '%s' for replication: %v", repo.Name, err)
		return
	}

	for {
		page, err := cursor.Pull(ctx, MaxListLimit)
		if err != nil {
			mr.log.Warn("Failed to list repo '%s' for replication: %v", repo.Name, err)
			return
		}
		if len(page) == 0 {
			return
		}

		for _, item := range page {
			exists, err := mr.replica.Exists(ctx, repo.Name, item)
			if err != nil {
				mr.log.Warn("Failed to check replica of item %d: %v", item.ID, err)
				continue
			}
			if !exists {
				content, err := readFile(res.BuildFile(item.Path, item.ContentType))
				if err != nil {
					mr.log.Warn("Failed to read item %d for replication: %v", item.ID, err)
					continue
				}
				if err := mr.replicatePut(ctx, repo.Name, item, content); err != nil {
					continue
				}
			}
			mr.replicateRemove(ctx, old, item)
		}
	}
}
