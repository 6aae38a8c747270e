// Package bolt implements the file-backed store variant on a single
// BoltDB file. Users, tasks and sessions live in their own buckets;
// every read-modify-write runs inside one bolt transaction.
package bolt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketUsers     = []byte("users")
	bucketUsernames = []byte("usernames")
	bucketTasks     = []byte("tasks")
	bucketSessions  = []byte("sessions")
)

// Store wraps the BoltDB handle shared by the file-backed repositories.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketUsernames, bucketTasks, bucketSessions} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for the health endpoint.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

// Ping verifies the database file is still usable.
func (s *Store) Ping() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
