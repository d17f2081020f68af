package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
)

func (sb *SQLiteBackend) CreateTag(ctx context.Context, tag *data.Tag) error {
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}

	createdAt, err := data.TimeToUnix(tag.CreatedAt)
	if err != nil {
		return err
	}

	result, err := sb.db.ExecContext(ctx, `
		INSERT INTO media_tags (name, repo_id, parent, created_at, is_deleted) VALUES (?, ?, ?, ?, 0)
	`, tag.Name, tag.RepoID, tag.Parent, createdAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	tag.ID = id
	tag.IsDeleted = false
	return nil
}

func (sb *SQLiteBackend) SelectTag(ctx context.Context, id int64) (*data.Tag, error) {
	row := sb.db.QueryRowContext(ctx, `
		SELECT `+storage.TagColumns+` FROM media_tags WHERE id = ? AND is_deleted = 0
	`, id)

	tag, err := storage.ScanTag(row)
	if err == sql.ErrNoRows {
		return nil, errors.TagNotFound("id %d", id)
	}

	return tag, err
}

func (sb *SQLiteBackend) ListTags(ctx context.Context, repoID int64) ([]*data.Tag, error) {
	return sb.queryTags(ctx, `
		SELECT `+storage.TagColumns+` FROM media_tags
		WHERE repo_id = ? AND is_deleted = 0 ORDER BY id
	`, repoID)
}

func (sb *SQLiteBackend) UpdateTag(ctx context.Context, tag *data.Tag) error {
	result, err := sb.db.ExecContext(ctx, `
		UPDATE media_tags SET name = ?, parent = ? WHERE id = ? AND is_deleted = 0
	`, tag.Name, tag.Parent, tag.ID)
	if err != nil {
		return err
	}

	return tagAffected(result, "id %d", tag.ID)
}

func (sb *SQLiteBackend) DeleteTag(ctx context.Context, id int64) error {
	tx, err := sb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var parent int64
	err = tx.QueryRowContext(ctx, "SELECT parent FROM media_tags WHERE id = ? AND is_deleted = 0", id).Scan(&parent)
	if err == sql.ErrNoRows {
		return errors.TagNotFound("id %d", id)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE media_tags SET is_deleted = 1 WHERE id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE media_tags SET parent = ? WHERE parent = ? AND is_deleted = 0", parent, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM media_item_tags WHERE tag_id = ?", id); err != nil {
		return err
	}

	return tx.Commit()
}

func (sb *SQLiteBackend) SelectItemsByTags(ctx context.Context, tagIDs []int64) ([]int64, error) {
	if len(tagIDs) == 0 {
		return []int64{}, nil
	}

	placeholders, args := inClause(tagIDs)
	rows, err := sb.db.QueryContext(ctx, `
		SELECT DISTINCT item_id FROM media_item_tags
		WHERE tag_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (sb *SQLiteBackend) AttachTag(ctx context.Context, itemID, tagID int64) error {
	if _, err := sb.SelectTag(ctx, tagID); err != nil {
		return err
	}

	var exists int
	err := sb.db.QueryRowContext(ctx, "SELECT 1 FROM media_items WHERE id = ?", itemID).Scan(&exists)
	if err == sql.ErrNoRows {
		return errors.ItemNotFound(itemID)
	}
	if err != nil {
		return err
	}

	_, err = sb.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO media_item_tags (item_id, tag_id) VALUES (?, ?)
	`, itemID, tagID)
	return err
}

func (sb *SQLiteBackend) DetachTag(ctx context.Context, itemID, tagID int64) error {
	result, err := sb.db.ExecContext(ctx, `
		DELETE FROM media_item_tags WHERE item_id = ? AND tag_id = ?
	`, itemID, tagID)
	if err != nil {
		return err
	}

	return tagAffected(result, "tag %d on item %d", tagID, itemID)
}

func (sb *SQLiteBackend) SelectItemTags(ctx context.Context, itemID int64) ([]*data.Tag, error) {
	return sb.queryTags(ctx, `
		SELECT t.id, t.name, t.repo_id, t.parent, t.created_at, t.is_deleted
		FROM media_tags t JOIN media_item_tags r ON r.tag_id = t.id
		WHERE r.item_id = ? AND t.is_deleted = 0 ORDER BY t.id
	`, itemID)
}

func (sb *SQLiteBackend) queryTags(ctx context.Context, query string, args ...any) ([]*data.Tag, error) {
	rows, err := sb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]*data.Tag, 0)
	for rows.Next() {
		tag, err := storage.ScanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// tagAffected maps "no row touched" to ErrTagNotFound.
func tagAffected(result sql.Result, format string, args ...any) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.TagNotFound(format, args...)
	}
	return nil
}
