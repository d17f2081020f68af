package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mwantia/mediarepo/data"
	mediaerrors "github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
)

func (pb *PostgresBackend) SelectMinMaxID(ctx context.Context, repoID int64) (int64, int64, error) {
	var lo, hi sql.NullInt64

	err := pb.pool.QueryRow(ctx, `
		SELECT MIN(id), MAX(id) FROM media_items
		WHERE repo_id = $1 AND is_deleted = false
	`, repoID).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to select id range: %w", err)
	}

	return lo.Int64, hi.Int64, nil
}

func (pb *PostgresBackend) SelectStartTime(ctx context.Context, repoID int64, t time.Time) (int64, error) {
	return pb.selectBoundary(ctx, `
		SELECT MIN(id) FROM media_items
		WHERE repo_id = $1 AND created_at >= $2 AND is_deleted = false
	`, repoID, t)
}

func (pb *PostgresBackend) SelectEndTime(ctx context.Context, repoID int64, t time.Time) (int64, error) {
	return pb.selectBoundary(ctx, `
		SELECT MAX(id) FROM media_items
		WHERE repo_id = $1 AND created_at < $2 AND is_deleted = false
	`, repoID, t)
}

func (pb *PostgresBackend) selectBoundary(ctx context.Context, query string, repoID int64, t time.Time) (int64, error) {
	var id sql.NullInt64
	if err := pb.pool.QueryRow(ctx, query, repoID, t.Unix()).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to select time boundary: %w", err)
	}

	if !id.Valid {
		return 0, mediaerrors.ItemNotFound(0)
	}

	return id.Int64, nil
}

func (pb *PostgresBackend) SelectByIDs(ctx context.Context, ids []int64) ([]*data.Item, error) {
	if len(ids) == 0 {
		return []*data.Item{}, nil
	}

	return pb.queryItems(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE id = ANY($1) AND is_deleted = false
	`, ids)
}

func (pb *PostgresBackend) SelectFrom(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error) {
	return pb.queryItems(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE repo_id = $1 AND id >= $2 AND id < $3 AND is_deleted = false
		ORDER BY id ASC LIMIT $4
	`, repoID, lower, upper, limit)
}

func (pb *PostgresBackend) SelectTo(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error) {
	return pb.queryItems(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE repo_id = $1 AND id >= $2 AND id < $3 AND is_deleted = false
		ORDER BY id DESC LIMIT $4
	`, repoID, lower, upper, limit)
}

func (pb *PostgresBackend) queryItems(ctx context.Context, query string, args ...any) ([]*data.Item, error) {
	rows, err := pb.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]*data.Item, 0)
	for rows.Next() {
		item, err := storage.ScanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (pb *PostgresBackend) CreateItem(ctx context.Context, item *data.Item) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	createdAt, err := data.TimeToUnix(item.CreatedAt)
	if err != nil {
		return err
	}

	extend, err := storage.ExtendValue(item.Extend)
	if err != nil {
		return err
	}

	ct := data.ContentTypeUnknown.ID
	if item.ContentType != nil {
		ct = item.ContentType.ID
	}

	err = pb.pool.QueryRow(ctx, `
		INSERT INTO media_items (name, content_type, size, created_at, is_deleted, repo_id, path, extend)
		VALUES ($1, $2, $3, $4, false, $5, $6, $7)
		RETURNING id
	`, item.Name, ct, item.Size, createdAt, item.RepoID, item.Path, extend).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	item.IsDeleted = false
	return nil
}

func (pb *PostgresBackend) SelectByID(ctx context.Context, id int64) (*data.Item, error) {
	row := pb.pool.QueryRow(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE id = $1 AND is_deleted = false
	`, id)

	item, err := storage.ScanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mediaerrors.ItemNotFound(id)
	}

	return item, err
}

func (pb *PostgresBackend) UpdatePath(ctx context.Context, id int64, path string) error {
	return pb.execItem(ctx, id, "UPDATE media_items SET path = $1 WHERE id = $2", path, id)
}

func (pb *PostgresBackend) UpdateExtend(ctx context.Context, id int64, extend data.Extend) error {
	value, err := storage.ExtendValue(extend)
	if err != nil {
		return err
	}

	return pb.execItem(ctx, id, "UPDATE media_items SET extend = $1 WHERE id = $2", value, id)
}

func (pb *PostgresBackend) UpdateName(ctx context.Context, id int64, name string) error {
	return pb.execItem(ctx, id, "UPDATE media_items SET name = $1 WHERE id = $2", name, id)
}

func (pb *PostgresBackend) UpdateRepo(ctx context.Context, id int64, repoID int64) error {
	return pb.execItem(ctx, id, "UPDATE media_items SET repo_id = $1 WHERE id = $2", repoID, id)
}

func (pb *PostgresBackend) DeleteItem(ctx context.Context, id int64) error {
	return pb.execItem(ctx, id, "UPDATE media_items SET is_deleted = true WHERE id = $1", id)
}

func (pb *PostgresBackend) RestoreItem(ctx context.Context, id int64) error {
	return pb.execItem(ctx, id, "UPDATE media_items SET is_deleted = false WHERE id = $1", id)
}

func (pb *PostgresBackend) execItem(ctx context.Context, id int64, query string, args ...any) error {
	tag, err := pb.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return mediaerrors.ItemNotFound(id)
	}

	return nil
}
