package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cyderes/trending-topics-service/internal/models"
)

const trendColumns = "id, title, summary, category, source, is_hidden, created_at"

// sqlStore holds the query logic shared by the SQLite and PostgreSQL backends.
// Queries are written with ? placeholders and rebound per driver.
type sqlStore struct {
	db       *sql.DB
	logger   *slog.Logger
	dollarPH bool // PostgreSQL uses $1, $2, ...
}

func (s *sqlStore) rebind(query string) string {
	if !s.dollarPH {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InsertMany stores all candidates in one transaction
func (s *sqlStore) InsertMany(ctx context.Context, candidates []models.CandidateTrend) ([]models.Trend, error) {
	trends := newTrends(candidates)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		"INSERT INTO trends ("+trendColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trends {
		if _, err := stmt.ExecContext(ctx, t.ID, t.Title, t.Summary, t.Category,
			string(t.Source), t.IsHidden, t.CreatedAt.UnixMicro()); err != nil {
			return nil, fmt.Errorf("failed to insert trend %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trends: %w", err)
	}

	s.logger.Debug("inserted trends", "count", len(trends))
	return trends, nil
}

// List returns a filtered page ordered newest first
func (s *sqlStore) List(ctx context.Context, filter Filter) ([]models.Trend, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Hidden != nil {
		where = append(where, "is_hidden = ?")
		args = append(args, *filter.Hidden)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM trends"+clause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trends: %w", err)
	}

	query := "SELECT " + trendColumns + " FROM trends" + clause +
		" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, s.rebind(query), append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	trends := []models.Trend{}
	for rows.Next() {
		t, err := scanTrend(rows)
		if err != nil {
			return nil, 0, err
		}
		trends = append(trends, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate trends: %w", err)
	}

	return trends, total, nil
}

// GetByID retrieves a specific trend by ID
func (s *sqlStore) GetByID(ctx context.Context, id string) (*models.Trend, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+trendColumns+" FROM trends WHERE id = ?"), id)
	t, err := scanTrend(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return t, err
}

// SetHidden updates the visibility flag and returns the stored record
func (s *sqlStore) SetHidden(ctx context.Context, id string, hidden bool) (*models.Trend, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		"UPDATE trends SET is_hidden = ? WHERE id = ? RETURNING "+trendColumns), hidden, id)
	t, err := scanTrend(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return t, err
}

// Ping checks the database connection
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrend(row rowScanner) (*models.Trend, error) {
	var (
		t       models.Trend
		source  string
		created int64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Summary, &t.Category, &source, &t.IsHidden, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan trend: %w", err)
	}
	t.Source = models.Source(source)
	t.CreatedAt = time.UnixMicro(created).UTC()
	return &t, nil
}
