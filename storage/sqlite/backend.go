package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mwantia/mediarepo/storage"
	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteBackend stores repos, items and tag relations in SQLite.
//
// Repo names are additionally kept in an in-memory B-tree (name → id) so
// name lookups and conflict checks never hit the database.
type SQLiteBackend struct {
	mu sync.RWMutex
	db *sql.DB

	repos *btree.Map[string, int64]
}

var _ storage.Store = (*SQLiteBackend)(nil)

// NewSQLiteBackend opens the database at dbPath, which can be ":memory:".
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	backend := &SQLiteBackend{
		db:    db,
		repos: btree.NewMap[string, int64](0),
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return backend, nil
}

func (sb *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS media_repos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		kind INTEGER NOT NULL,
		file_order INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS media_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		content_type INTEGER NOT NULL,
		size INTEGER NOT NULL CHECK(size >= 0),
		created_at INTEGER NOT NULL,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		repo_id INTEGER NOT NULL REFERENCES media_repos(id),
		path TEXT NOT NULL DEFAULT '',
		extend TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_media_items_repo ON media_items(repo_id, is_deleted, id);
	CREATE INDEX IF NOT EXISTS idx_media_items_created ON media_items(repo_id, created_at);

	CREATE TABLE IF NOT EXISTS media_tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		repo_id INTEGER NOT NULL REFERENCES media_repos(id),
		parent INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		is_deleted INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_media_tags_repo ON media_tags(repo_id, is_deleted);

	CREATE TABLE IF NOT EXISTS media_item_tags (
		item_id INTEGER NOT NULL REFERENCES media_items(id),
		tag_id INTEGER NOT NULL REFERENCES media_tags(id),
		PRIMARY KEY (item_id, tag_id)
	);
	CREATE INDEX IF NOT EXISTS idx_media_item_tags_tag ON media_item_tags(tag_id);
	`

	_, err := sb.db.Exec(schema)
	return err
}

// Name returns the identifier name defined for this backend.
func (*SQLiteBackend) Name() string {
	return "sqlite"
}

// Open verifies the connection and loads all repo names into the B-tree.
func (sb *SQLiteBackend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if err := sb.db.PingContext(ctx); err != nil {
		return err
	}

	rows, err := sb.db.QueryContext(ctx, "SELECT name, id FROM media_repos")
	if err != nil {
		return err
	}
	defer rows.Close()

	sb.repos.Clear()
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return err
		}
		sb.repos.Set(name, id)
	}

	return rows.Err()
}

// Close releases the database handle.
func (sb *SQLiteBackend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.repos.Clear()
	return sb.db.Close()
}
