// Package storage provides the durable backend for session state.
// It uses BoltDB as the underlying storage engine, keeping each trading
// parameter under its own key so that a failure to read one field never
// affects the others.
//
// The package implements the persistence port consumed by the parameter
// store; swapping it for an in-memory fake keeps the core testable
// without a real database.
package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const sessionBucket = "session" // Bucket name for per-session parameter fields

// Store provides persistent key/value storage for session state using
// BoltDB. Values are the serialized primitive form of each field.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates the session bucket.
// Returns an error if the database cannot be opened or the bucket
// cannot be created.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "leverage-calc.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(sessionBucket)); err != nil {
			return fmt.Errorf("create session bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Read returns the stored value for key. found is false when the key
// has never been written.
func (s *Store) Read(key string) ([]byte, bool, error) {
	var value []byte
	var found bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}

	return value, found, nil
}

// Write persists one key as its own storage operation.
func (s *Store) Write(key string, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// WriteAll persists several keys inside a single transaction, so a
// logical parameter update is either fully durable or not at all.
func (s *Store) WriteAll(values map[string][]byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))
		for key, value := range values {
			if err := b.Put([]byte(key), value); err != nil {
				return fmt.Errorf("put %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}
