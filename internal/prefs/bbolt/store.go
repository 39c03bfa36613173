// Package bbolt provides a BoltDB-backed preference catalog.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/stabletime/internal/prefs"
	"go.etcd.io/bbolt"
)

// Catalog hands out suite partitions backed by one BoltDB file. Each suite
// maps to a bucket; mappings are stored JSON-encoded under their slot key.
// encoding/json round-trips float64 values exactly, so the canonical mapping
// survives the encode.
type Catalog struct {
	db *bbolt.DB
}

var _ prefs.Catalog = (*Catalog)(nil)

// Open opens a BoltDB preference catalog at the provided path.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the underlying BoltDB database.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Standard returns the default partition.
func (c *Catalog) Standard() prefs.Store {
	return &suiteStore{db: c.db, suite: prefs.StandardSuite}
}

// Suite returns the partition for the given group name.
func (c *Catalog) Suite(name string) (prefs.Store, error) {
	suite, err := prefs.ValidateSuiteName(name)
	if err != nil {
		return nil, fmt.Errorf("resolve suite: %w", err)
	}
	return &suiteStore{db: c.db, suite: suite}, nil
}

// suiteStore persists mappings for one suite bucket.
type suiteStore struct {
	db    *bbolt.DB
	suite string
}

var _ prefs.Store = (*suiteStore)(nil)

// Mapping returns the mapping stored under key, or prefs.ErrNotFound.
func (s *suiteStore) Mapping(ctx context.Context, key string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}

	var values map[string]float64
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(s.suite))
		if bucket == nil {
			return prefs.ErrNotFound
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return prefs.ErrNotFound
		}
		if err := json.Unmarshal(payload, &values); err != nil {
			return fmt.Errorf("unmarshal mapping: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// SetMapping stores values under key, replacing any prior mapping.
func (s *suiteStore) SetMapping(ctx context.Context, key string, values map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if len(values) == 0 {
		return fmt.Errorf("mapping values are required")
	}

	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(s.suite))
		if err != nil {
			return fmt.Errorf("create suite bucket: %w", err)
		}
		return bucket.Put([]byte(key), payload)
	})
}
