package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mwantia/mediarepo/data"
	mediaerrors "github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
)

func (pb *PostgresBackend) CreateTag(ctx context.Context, tag *data.Tag) error {
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}

	createdAt, err := data.TimeToUnix(tag.CreatedAt)
	if err != nil {
		return err
	}

	err = pb.pool.QueryRow(ctx, `
		INSERT INTO media_tags (name, repo_id, parent, created_at, is_deleted)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id
	`, tag.Name, tag.RepoID, tag.Parent, createdAt).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	tag.IsDeleted = false
	return nil
}

func (pb *PostgresBackend) SelectTag(ctx context.Context, id int64) (*data.Tag, error) {
	row := pb.pool.QueryRow(ctx, `
		SELECT `+storage.TagColumns+` FROM media_tags WHERE id = $1 AND is_deleted = false
	`, id)

	tag, err := storage.ScanTag(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mediaerrors.TagNotFound("id %d", id)
	}

	return tag, err
}

func (pb *PostgresBackend) ListTags(ctx context.Context, repoID int64) ([]*data.Tag, error) {
	return pb.queryTags(ctx, `
		SELECT `+storage.TagColumns+` FROM media_tags
		WHERE repo_id = $1 AND is_deleted = false ORDER BY id
	`, repoID)
}

func (pb *PostgresBackend) UpdateTag(ctx context.Context, tag *data.Tag) error {
	result, err := pb.pool.Exec(ctx, `
		UPDATE media_tags SET name = $1, parent = $2 WHERE id = $3 AND is_deleted = false
	`, tag.Name, tag.Parent, tag.ID)
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return mediaerrors.TagNotFound("id %d", tag.ID)
	}
	return nil
}

func (pb *PostgresBackend) DeleteTag(ctx context.Context, id int64) error {
	conn, err := pb.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var parent int64
	err = tx.QueryRow(ctx, `
		SELECT parent FROM media_tags WHERE id = $1 AND is_deleted = false FOR UPDATE
	`, id).Scan(&parent)
	if errors.Is(err, pgx.ErrNoRows) {
		return mediaerrors.TagNotFound("id %d", id)
	}
	if err != nil {
		return fmt.Errorf("failed to select tag: %w", err)
	}

	statements := []struct {
		query string
		args  []any
	}{
		{"UPDATE media_tags SET is_deleted = true WHERE id = $1", []any{id}},
		{"UPDATE media_tags SET parent = $1 WHERE parent = $2 AND is_deleted = false", []any{parent, id}},
		{"DELETE FROM media_item_tags WHERE tag_id = $1", []any{id}},
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt.query, stmt.args...); err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (pb *PostgresBackend) SelectItemsByTags(ctx context.Context, tagIDs []int64) ([]int64, error) {
	if len(tagIDs) == 0 {
		return []int64{}, nil
	}

	rows, err := pb.pool.Query(ctx, `
		SELECT DISTINCT item_id FROM media_item_tags WHERE tag_id = ANY($1)
	`, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect tag items: %w", err)
	}

	return ids, nil
}

func (pb *PostgresBackend) AttachTag(ctx context.Context, itemID, tagID int64) error {
	if _, err := pb.SelectTag(ctx, tagID); err != nil {
		return err
	}

	var exists bool
	err := pb.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM media_items WHERE id = $1)", itemID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return mediaerrors.ItemNotFound(itemID)
	}

	_, err = pb.pool.Exec(ctx, `
		INSERT INTO media_item_tags (item_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, itemID, tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag: %w", err)
	}

	return nil
}

func (pb *PostgresBackend) DetachTag(ctx context.Context, itemID, tagID int64) error {
	result, err := pb.pool.Exec(ctx, `
		DELETE FROM media_item_tags WHERE item_id = $1 AND tag_id = $2
	`, itemID, tagID)
	if err != nil {
		return fmt.Errorf("failed to detach tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return mediaerrors.TagNotFound("tag %d on item %d", tagID, itemID)
	}
	return nil
}

func (pb *PostgresBackend) SelectItemTags(ctx context.Context, itemID int64) ([]*data.Tag, error) {
	return pb.queryTags(ctx, `
		SELECT t.id, t.name, t.repo_id, t.parent, t.created_at, t.is_deleted
		FROM media_tags t JOIN media_item_tags r ON r.tag_id = t.id
		WHERE r.item_id = $1 AND t.is_deleted = false ORDER BY t.id
	`, itemID)
}

func (pb *PostgresBackend) queryTags(ctx context.Context, query string, args ...any) ([]*data.Tag, error) {
	rows, err := pb.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
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
