package sqlite

import (
	"canvas-templates/core"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database holding a small key-value table.
func NewStore(ctx context.Context, dataSourceName string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	kvTableStmt := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME
	);`
	if _, err = db.ExecContext(ctx, kvTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &sqliteStore{db}, nil
}

func (s *sqliteStore) Load(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", core.TokenKey).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.ErrTokenNotFound
		}
		logrus.WithError(err).Error("Failed to load token")
		return "", err
	}
	return token, nil
}

func (s *sqliteStore) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		core.TokenKey, token, time.Now())
	if err != nil {
		logrus.WithError(err).Error("Failed to save token")
		return err
	}
	return nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", core.TokenKey)
	return err
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
