package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
)

func (sb *SQLiteBackend) CreateRepo(ctx context.Context, repo *data.Repo) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if _, exists := sb.repos.Get(repo.Name); exists {
		return errors.UsedRepoName(repo.Name)
	}

	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = time.Now().UTC()
	}

	result, err := sb.db.ExecContext(ctx, `
		INSERT INTO media_repos (name, kind, file_order, created_at) VALUES (?, ?, ?, ?)
	`, repo.Name, int(repo.Kind), int(repo.Order), repo.CreatedAt.Unix())
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	repo.ID = id
	sb.repos.Set(repo.Name, id)
	return nil
}

func (sb *SQLiteBackend) SelectRepo(ctx context.Context, id int64) (*data.Repo, error) {
	row := sb.db.QueryRowContext(ctx, "SELECT "+storage.RepoColumns+" FROM media_repos WHERE id = ?", id)

	repo, err := storage.ScanRepo(row)
	if err == sql.ErrNoRows {
		return nil, errors.NoSuchRepo(id)
	}

	return repo, err
}

func (sb *SQLiteBackend) SelectRepoByName(ctx context.Context, name string) (*data.Repo, error) {
	sb.mu.RLock()
	id, exists := sb.repos.Get(name)
	sb.mu.RUnlock()

	if !exists {
		return nil, errors.NoSuchRepo(name)
	}

	return sb.SelectRepo(ctx, id)
}

func (sb *SQLiteBackend) ListRepos(ctx context.Context) ([]*data.Repo, error) {
	rows, err := sb.db.QueryContext(ctx, "SELECT "+storage.RepoColumns+" FROM media_repos ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	repos := make([]*data.Repo, 0)
	for rows.Next() {
		repo, err := storage.ScanRepo(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	return repos, rows.Err()
}

func (sb *SQLiteBackend) UpdateRepoName(ctx context.Context, id int64, name string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if owner, exists := sb.repos.Get(name); exists && owner != id {
		return errors.UsedRepoName(name)
	}

	var old string
	err := sb.db.QueryRowContext(ctx, "SELECT name FROM media_repos WHERE id = ?", id).Scan(&old)
	if err == sql.ErrNoRows {
		return errors.NoSuchRepo(id)
	}
	if err != nil {
		return err
	}

	if _, err := sb.db.ExecContext(ctx, "UPDATE media_repos SET name = ? WHERE id = ?", name, id); err != nil {
		return err
	}

	sb.repos.Delete(old)
	sb.repos.Set(name, id)
	return nil
}
