package storage

import (
	"database/sql"
	"slices"

	"github.com/mwantia/mediarepo/data"
)

// Row is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type Row interface {
	Scan(dest ...any) error
}

// Column lists shared by the SQL backends, in scan order.
const (
	ItemColumns = "id, name, content_type, size, created_at, is_deleted, repo_id, path, extend"
	RepoColumns = "id, name, kind, file_order, created_at"
	TagColumns  = "id, name, repo_id, parent, created_at, is_deleted"
)

// ScanItem reads one row selected with ItemColumns.
func ScanItem(row Row) (*data.Item, error) {
	var item data.Item
	var contentType, createdAt int64
	var extend sql.NullString

	if err := row.Scan(&item.ID, &item.Name, &contentType, &item.Size, &createdAt,
		&item.IsDeleted, &item.RepoID, &item.Path, &extend); err != nil {
		return nil, err
	}

	created, err := data.TimeFromUnix(createdAt)
	if err != nil {
		return nil, err
	}

	ext, err := data.UnmarshalExtend([]byte(extend.String))
	if err != nil {
		return nil, err
	}

	item.ContentType = data.FromID(contentType)
	item.CreatedAt = created
	item.Extend = ext
	return &item, nil
}

// ScanRepo reads one row selected with RepoColumns.
func ScanRepo(row Row) (*data.Repo, error) {
	var repo data.Repo
	var kind, order int
	var createdAt int64

	if err := row.Scan(&repo.ID, &repo.Name, &kind, &order, &createdAt); err != nil {
		return nil, err
	}

	created, err := data.TimeFromUnix(createdAt)
	if err != nil {
		return nil, err
	}

	repo.Kind = data.RepoKind(kind)
	repo.Order = data.FileOrder(order)
	repo.CreatedAt = created
	return &repo, nil
}

// ScanTag reads one row selected with TagColumns.
func ScanTag(row Row) (*data.Tag, error) {
	var tag data.Tag
	var createdAt int64

	if err := row.Scan(&tag.ID, &tag.Name, &tag.RepoID, &tag.Parent, &createdAt, &tag.IsDeleted); err != nil {
		return nil, err
	}

	created, err := data.TimeFromUnix(createdAt)
	if err != nil {
		return nil, err
	}

	tag.CreatedAt = created
	return &tag, nil
}

// ExtendValue encodes the extend column. A "none" payload is stored as NULL.
func ExtendValue(e data.Extend) (sql.NullString, error) {
	if e.IsNone() {
		return sql.NullString{}, nil
	}

	raw, err := data.MarshalExtend(e)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(raw), Valid: true}, nil
}

// SortIDs orders ids ascending, or descending when desc is set.
func SortIDs(ids []int64, desc bool) {
	slices.Sort(ids)
	if desc {
		slices.Reverse(ids)
	}
}

// SortItems orders items by id, ascending or descending.
func SortItems(items []*data.Item, desc bool) {
	slices.SortFunc(items, func(a, b *data.Item) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	if desc {
		slices.Reverse(items)
	}
}
