package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cyderes/trending-topics-service/internal/config"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trends (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL,
	source     TEXT NOT NULL,
	is_hidden  INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trends_listing ON trends (is_hidden, category, created_at DESC);
`

// SQLiteStorage implements Storage on an embedded SQLite database
type SQLiteStorage struct {
	sqlStore
}

// NewSQLiteStorage opens (or creates) the database at cfg.SQLitePath.
// Pass ":memory:" for an in-process database.
func NewSQLiteStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	dsn := cfg.SQLitePath
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("sqlite storage ready", "path", dsn)
	return &SQLiteStorage{sqlStore{db: db, logger: logger}}, nil
}
