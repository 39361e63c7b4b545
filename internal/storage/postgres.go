package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/cyderes/trending-topics-service/internal/config"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS trends (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL,
	source     TEXT NOT NULL,
	is_hidden  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trends_listing ON trends (is_hidden, category, created_at DESC);
`

// PostgreSQLStorage implements Storage using PostgreSQL
type PostgreSQLStorage struct {
	sqlStore
}

// NewPostgreSQLStorage connects to cfg.PostgresURI and ensures the schema exists
func NewPostgreSQLStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*PostgreSQLStorage, error) {
	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("postgres storage ready")
	return &PostgreSQLStorage{sqlStore{db: db, logger: logger, dollarPH: true}}, nil
}
