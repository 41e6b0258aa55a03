// Package resultdb persists indexer results in a bbolt database.
package resultdb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/0xADE/ade-xdgd/internal/indexer"
)

const (
	dbFile        = "xdgd.results"
	entriesBucket = "entries"
	hitsBucket    = "hits"
	dbPermissions = 0600
)

// Store holds resolved entries keyed by desktop ID, plus a lookup counter
// per ID.
type Store struct {
	db *bbolt.DB
}

// DefaultPath returns the database location in the user cache directory.
func DefaultPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "ade", dbFile), nil
}

// Open creates or opens the database at path. An empty path selects
// DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(path, dbPermissions, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{entriesBucket, hitsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put stores or replaces a single entry.
func (s *Store) Put(entry *indexer.Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putEntry(tx.Bucket([]byte(entriesBucket)), entry)
	})
}

// Replace swaps the stored entries for entries in one transaction. Lookup
// counters are kept.
func (s *Store) Replace(entries []*indexer.Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(entriesBucket)); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}
		b, err := tx.CreateBucket([]byte(entriesBucket))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", entriesBucket, err)
		}
		for _, entry := range entries {
			if err := putEntry(b, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func putEntry(b *bbolt.Bucket, entry *indexer.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", entry.ID, err)
	}
	return b.Put([]byte(entry.ID), data)
}

// Get returns the entry stored for id.
func (s *Store) Get(id string) (*indexer.Entry, bool, error) {
	var entry *indexer.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(entriesBucket)).Get([]byte(id))
		if data == nil {
			return nil
		}
		entry = &indexer.Entry{}
		if err := json.Unmarshal(data, entry); err != nil {
			return fmt.Errorf("decoding %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return entry, entry != nil, nil
}

// All returns every stored entry ordered by ID.
func (s *Store) All() ([]*indexer.Entry, error) {
	var entries []*indexer.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(entriesBucket)).ForEach(func(k, v []byte) error {
			entry := &indexer.Entry{}
			if err := json.Unmarshal(v, entry); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// Hit increases the lookup count for id.
func (s *Store) Hit(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(hitsBucket))

		var count uint64
		if val := b.Get([]byte(id)); val != nil {
			count = binary.BigEndian.Uint64(val)
		}
		count++

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, count)
		return b.Put([]byte(id), buf)
	})
}

// Hits returns the lookup counts for ids. Unknown IDs map to zero.
func (s *Store) Hits(ids []string) map[string]uint64 {
	hits := make(map[string]uint64, len(ids))
	s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(hitsBucket))
		for _, id := range ids {
			if val := b.Get([]byte(id)); val != nil {
				hits[id] = binary.BigEndian.Uint64(val)
			} else {
				hits[id] = 0
			}
		}
		return nil
	})
	return hits
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
