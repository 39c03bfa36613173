// Package sqlite provides a SQLite-backed preference catalog.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	sqlitemigrate "github.com/louisbranch/stabletime/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/stabletime/internal/prefs"
	"github.com/louisbranch/stabletime/internal/prefs/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Catalog hands out suite partitions backed by one SQLite database.
type Catalog struct {
	sqlDB *sql.DB
}

var _ prefs.Catalog = (*Catalog)(nil)

// Open opens a SQLite preference catalog and applies embedded migrations.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Catalog{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (c *Catalog) Close() error {
	if c == nil || c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}

// Standard returns the default partition.
func (c *Catalog) Standard() prefs.Store {
	return &suiteStore{sqlDB: c.sqlDB, suite: prefs.StandardSuite}
}

// Suite returns the partition for the given group name.
func (c *Catalog) Suite(name string) (prefs.Store, error) {
	suite, err := prefs.ValidateSuiteName(name)
	if err != nil {
		return nil, fmt.Errorf("resolve suite: %w", err)
	}
	return &suiteStore{sqlDB: c.sqlDB, suite: suite}, nil
}

// suiteStore persists mappings for one suite. Mappings are stored one row
// per field so values stay REAL and round-trip without re-encoding.
type suiteStore struct {
	sqlDB *sql.DB
	suite string
}

var _ prefs.Store = (*suiteStore)(nil)

// Mapping returns the mapping stored under key, or prefs.ErrNotFound.
func (s *suiteStore) Mapping(ctx context.Context, key string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT field, value FROM preferences WHERE suite = ? AND slot = ?`,
		s.suite,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]float64)
	for rows.Next() {
		var field string
		var value float64
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan mapping row: %w", err)
		}
		values[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mapping rows: %w", err)
	}
	if len(values) == 0 {
		return nil, prefs.ErrNotFound
	}
	return values, nil
}

// SetMapping stores values under key, replacing any prior mapping.
func (s *suiteStore) SetMapping(ctx context.Context, key string, values map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if len(values) == 0 {
		return fmt.Errorf("mapping values are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mapping transaction: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM preferences WHERE suite = ? AND slot = ?`,
		s.suite,
		key,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear mapping: %w", err)
	}
	for field, value := range values {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO preferences (suite, slot, field, value) VALUES (?, ?, ?, ?)`,
			s.suite,
			key,
			field,
			value,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write mapping field %s: %w", field, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mapping: %w", err)
	}
	return nil
}
