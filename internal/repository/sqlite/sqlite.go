// Package sqlite provides an embedded SQLite store for users and reports,
// used when no Postgres server is available (local runs, tests).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure Go driver, no CGO
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    bill TEXT NOT NULL,
    analysis TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_reports_user_created ON reports(user_id, created_at);
`

// Store implements both the user and the report store on a single SQLite file.
type Store struct {
	db     *sql.DB
	sb     squirrel.StatementBuilderType
	logger *zap.Logger
}

// New opens (creating if needed) the database at dbPath and applies the schema.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("SQLite store opened", zap.String("path", dbPath))

	return &Store{
		db:     db,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query squirrel.Sqlizer) error {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Timestamps are stored as unix nanoseconds so ordering is exact.
func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
