package ephemeral

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
)

func (eb *EphemeralBackend) CreateRepo(ctx context.Context, repo *data.Repo) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if _, exists := eb.repoNames.Get(repo.Name); exists {
		return errors.UsedRepoName(repo.Name)
	}

	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = time.Now().UTC()
	}

	eb.nextRepoID++
	repo.ID = eb.nextRepoID

	eb.repos[repo.ID] = cloneRepo(repo)
	eb.repoNames.Set(repo.Name, repo.ID)
	return nil
}

func (eb *EphemeralBackend) SelectRepo(ctx context.Context, id int64) (*data.Repo, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	repo, ok := eb.repos[id]
	if !ok {
		return nil, errors.NoSuchRepo(id)
	}

	return cloneRepo(repo), nil
}

func (eb *EphemeralBackend) SelectRepoByName(ctx context.Context, name string) (*data.Repo, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	id, ok := eb.repoNames.Get(name)
	if !ok {
		return nil, errors.NoSuchRepo(name)
	}

	return cloneRepo(eb.repos[id]), nil
}

func (eb *EphemeralBackend) ListRepos(ctx context.Context) ([]*data.Repo, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	repos := make([]*data.Repo, 0, len(eb.repos))
	for _, repo := range eb.repos {
		repos = append(repos, cloneRepo(repo))
	}

	slices.SortFunc(repos, func(a, b *data.Repo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return repos, nil
}

func (eb *EphemeralBackend) UpdateRepoName(ctx context.Context, id int64, name string) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	repo, ok := eb.repos[id]
	if !ok {
		return errors.NoSuchRepo(id)
	}

	if owner, exists := eb.repoNames.Get(name); exists && owner != id {
		return errors.UsedRepoName(name)
	}

	eb.repoNames.Delete(repo.Name)
	repo.Name = name
	eb.repoNames.Set(name, id)
	return nil
}
