package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mwantia/mediarepo/data"
	mediaerrors "github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (pb *PostgresBackend) CreateRepo(ctx context.Context, repo *data.Repo) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if _, exists := pb.repos.Get(repo.Name); exists {
		return mediaerrors.UsedRepoName(repo.Name)
	}

	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = time.Now().UTC()
	}

	err := pb.pool.QueryRow(ctx, `
		INSERT INTO media_repos (name, kind, file_order, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, repo.Name, int(repo.Kind), int(repo.Order), repo.CreatedAt.Unix()).Scan(&repo.ID)
	if isUniqueViolation(err) {
		return mediaerrors.UsedRepoName(repo.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert repo: %w", err)
	}

	pb.repos.Set(repo.Name, repo.ID)
	return nil
}

func (pb *PostgresBackend) SelectRepo(ctx context.Context, id int64) (*data.Repo, error) {
	row := pb.pool.QueryRow(ctx, "SELECT "+storage.RepoColumns+" FROM media_repos WHERE id = $1", id)

	repo, err := storage.ScanRepo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mediaerrors.NoSuchRepo(id)
	}

	return repo, err
}

func (pb *PostgresBackend) SelectRepoByName(ctx context.Context, name string) (*data.Repo, error) {
	pb.mu.RLock()
	id, exists := pb.repos.Get(name)
	pb.mu.RUnlock()

	if !exists {
		return nil, mediaerrors.NoSuchRepo(name)
	}

	return pb.SelectRepo(ctx, id)
}

func (pb *PostgresBackend) ListRepos(ctx context.Context) ([]*data.Repo, error) {
	rows, err := pb.pool.Query(ctx, "SELECT "+storage.RepoColumns+" FROM media_repos ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query repos: %w", err)
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

func (pb *PostgresBackend) UpdateRepoName(ctx context.Context, id int64, name string) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if owner, exists := pb.repos.Get(name); exists && owner != id {
		return mediaerrors.UsedRepoName(name)
	}

	var old string
	err := pb.pool.QueryRow(ctx, `
		WITH previous AS (SELECT name FROM media_repos WHERE id = $2)
		UPDATE media_repos SET name = $1
		FROM previous WHERE media_repos.id = $2
		RETURNING previous.name
	`, name, id).Scan(&old)
	if errors.Is(err, pgx.ErrNoRows) {
		return mediaerrors.NoSuchRepo(id)
	}
	if isUniqueViolation(err) {
		return mediaerrors.UsedRepoName(name)
	}
	if err != nil {
		return fmt.Errorf("failed to rename repo: %w", err)
	}

	pb.repos.Delete(old)
	pb.repos.Set(name, id)
	return nil
}
