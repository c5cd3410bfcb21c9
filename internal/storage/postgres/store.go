// Package postgres provides a PostgreSQL-backed Store over a single
// key/value table, migrated with goose on startup.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/gracechapel/scripture-assistant/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists slots in the assistant_store table.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and runs pending migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	logrus.Info("Starting database migration...")

	goose.SetLogger(logrus.StandardLogger())
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	if err := goose.Up(db, "migrations", goose.WithAllowMissing()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logrus.Info("Database migration completed")
	return nil
}

// Load retrieves a value by key.
func (s *Store) Load(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM assistant_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("load %q: %w", key, err)
	}
	return value, nil
}

// Save upserts a value under key.
func (s *Store) Save(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assistant_store (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Remove deletes a key. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM assistant_store WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
