package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
)

func (sb *SQLiteBackend) SelectMinMaxID(ctx context.Context, repoID int64) (int64, int64, error) {
	var lo, hi sql.NullInt64

	err := sb.db.QueryRowContext(ctx, `
		SELECT MIN(id), MAX(id) FROM media_items
		WHERE repo_id = ? AND is_deleted = 0
	`, repoID).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, err
	}

	return lo.Int64, hi.Int64, nil
}

func (sb *SQLiteBackend) SelectStartTime(ctx context.Context, repoID int64, t time.Time) (int64, error) {
	return sb.selectBoundary(ctx, `
		SELECT MIN(id) FROM media_items
		WHERE repo_id = ? AND created_at >= ? AND is_deleted = 0
	`, repoID, t)
}

func (sb *SQLiteBackend) SelectEndTime(ctx context.Context, repoID int64, t time.Time) (int64, error) {
	return sb.selectBoundary(ctx, `
		SELECT MAX(id) FROM media_items
		WHERE repo_id = ? AND created_at < ? AND is_deleted = 0
	`, repoID, t)
}

func (sb *SQLiteBackend) selectBoundary(ctx context.Context, query string, repoID int64, t time.Time) (int64, error) {
	var id sql.NullInt64
	if err := sb.db.QueryRowContext(ctx, query, repoID, t.Unix()).Scan(&id); err != nil {
		return 0, err
	}

	if !id.Valid {
		return 0, errors.ItemNotFound(0)
	}

	return id.Int64, nil
}

func (sb *SQLiteBackend) SelectByIDs(ctx context.Context, ids []int64) ([]*data.Item, error) {
	if len(ids) == 0 {
		return []*data.Item{}, nil
	}

	placeholders, args := inClause(ids)
	return sb.queryItems(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE id IN (`+placeholders+`) AND is_deleted = 0
	`, args...)
}

// inClause returns the placeholder list and arguments of an IN (...) clause.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

func (sb *SQLiteBackend) SelectFrom(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error) {
	return sb.queryItems(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE repo_id = ? AND id >= ? AND id < ? AND is_deleted = 0
		ORDER BY id ASC LIMIT ?
	`, repoID, lower, upper, limit)
}

func (sb *SQLiteBackend) SelectTo(ctx context.Context, repoID, lower, upper int64, limit int) ([]*data.Item, error) {
	return sb.queryItems(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE repo_id = ? AND id >= ? AND id < ? AND is_deleted = 0
		ORDER BY id DESC LIMIT ?
	`, repoID, lower, upper, limit)
}

func (sb *SQLiteBackend) queryItems(ctx context.Context, query string, args ...any) ([]*data.Item, error) {
	rows, err := sb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
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

func (sb *SQLiteBackend) CreateItem(ctx context.Context, item *data.Item) error {
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

	result, err := sb.db.ExecContext(ctx, `
		INSERT INTO media_items (name, content_type, size, created_at, is_deleted, repo_id, path, extend)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)
	`, item.Name, ct, item.Size, createdAt, item.RepoID, item.Path, extend)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	item.ID = id
	item.IsDeleted = false
	return nil
}

func (sb *SQLiteBackend) SelectByID(ctx context.Context, id int64) (*data.Item, error) {
	row := sb.db.QueryRowContext(ctx, `
		SELECT `+storage.ItemColumns+` FROM media_items
		WHERE id = ? AND is_deleted = 0
	`, id)

	item, err := storage.ScanItem(row)
	if err == sql.ErrNoRows {
		return nil, errors.ItemNotFound(id)
	}

	return item, err
}

func (sb *SQLiteBackend) UpdatePath(ctx context.Context, id int64, path string) error {
	return sb.execItem(ctx, id, "UPDATE media_items SET path = ? WHERE id = ?", path, id)
}

func (sb *SQLiteBackend) UpdateExtend(ctx context.Context, id int64, extend data.Extend) error {
	value, err := storage.ExtendValue(extend)
	if err != nil {
		return err
	}

	return sb.execItem(ctx, id, "UPDATE media_items SET extend = ? WHERE id = ?", value, id)
}

func (sb *SQLiteBackend) UpdateName(ctx context.Context, id int64, name string) error {
	return sb.execItem(ctx, id, "UPDATE media_items SET name = ? WHERE id = ?", name, id)
}

func (sb *SQLiteBackend) UpdateRepo(ctx context.Context, id int64, repoID int64) error {
	return sb.execItem(ctx, id, "UPDATE media_items SET repo_id = ? WHERE id = ?", repoID, id)
}

func (sb *SQLiteBackend) DeleteItem(ctx context.Context, id int64) error {
	return sb.execItem(ctx, id, "UPDATE media_items SET is_deleted = 1 WHERE id = ?", id)
}

func (sb *SQLiteBackend) RestoreItem(ctx context.Context, id int64) error {
	return sb.execItem(ctx, id, "UPDATE media_items SET is_deleted = 0 WHERE id = ?", id)
}

// execItem runs an update and maps "no row touched" to ErrItemNotFound.
func (sb *SQLiteBackend) execItem(ctx context.Context, id int64, query string, args ...any) error {
	result, err := sb.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.ItemNotFound(id)
	}

	return nil
}
