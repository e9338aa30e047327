package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-hse/internal/database"
)

// dialect holds the statements that differ between sql drivers.
type dialect struct {
	create string
	get    string
	set    string
	remove string
}

var dialects = map[string]dialect{
	"postgres": {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		get: `SELECT value FROM kv_store WHERE key = $1`,
		set: `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		remove: `DELETE FROM kv_store WHERE key = $1`,
	},
	"mysql": {
		create: "CREATE TABLE IF NOT EXISTS kv_store (" +
			"`key` VARCHAR(255) PRIMARY KEY, " +
			"`value` MEDIUMTEXT NOT NULL, " +
			"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP)",
		get: "SELECT `value` FROM kv_store WHERE `key` = ?",
		set: "INSERT INTO kv_store (`key`, `value`) VALUES (?, ?) " +
			"ON DUPLICATE KEY UPDATE `value` = VALUES(`value`)",
		remove: "DELETE FROM kv_store WHERE `key` = ?",
	},
	"sqlite": {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		get: `SELECT value FROM kv_store WHERE key = ?`,
		set: `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		remove: `DELETE FROM kv_store WHERE key = ?`,
	},
}

type SQLStore struct {
	db *sql.DB
	q  dialect
}

// NewSQLStore creates the kv_store table if needed.
func NewSQLStore(ctx context.Context, sdb *database.SQLDB) (*SQLStore, error) {
	q, ok := dialects[sdb.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", sdb.Driver)
	}
	if _, err := sdb.DB.ExecContext(ctx, q.create); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return &SQLStore{db: sdb.DB, q: q}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.q.set, key, value)
	return err
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.q.remove, key)
	return err
}
