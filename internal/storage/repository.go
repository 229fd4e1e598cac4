package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finanzas/internal/ledger"
	applog "finanzas/internal/log"

	_ "modernc.org/sqlite"
)

var _ ledger.Storage = (*SQLiteRepository)(nil)

// SQLiteRepository stores the serialized ledger as a single row of a
// key-value table.
type SQLiteRepository struct {
	db  *sql.DB
	key string
}

func NewSQLiteRepository(dbPath, key string) (*SQLiteRepository, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("storage key cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, key: key}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Key returns the key this repository reads and writes.
func (r *SQLiteRepository) Key() string {
	return r.key
}

// Load implements ledger.Storage
func (r *SQLiteRepository) Load(ctx context.Context) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.key, err)
	}
	return []byte(value), nil
}

// Save implements ledger.Storage
func (r *SQLiteRepository) Save(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		r.key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save %s: %w", r.key, err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldKey, r.key,
		applog.FieldBytes, len(data))
	return nil
}

// Erase implements ledger.Storage
func (r *SQLiteRepository) Erase(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, r.key)
	if err != nil {
		return fmt.Errorf("erase %s: %w", r.key, err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Ledger erased from SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldKey, r.key,
		"rows", n)
	return nil
}

// Keys lists every key present in the table.
func (r *SQLiteRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// UpdatedAt returns when the value was last written, or the zero time when
// nothing is stored.
func (r *SQLiteRepository) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, r.key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read updated_at for %s: %w", r.key, err)
	}
	return ts, nil
}
