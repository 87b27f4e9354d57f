// Package store keeps a local copy of the program catalog in a BoltDB file.
// The store preserves insertion order and doubles as a catalog.Source, so the
// GUI can browse an imported catalog without network access.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"showcase/internal/catalog"
)

const (
	dbFileName    = "showcase_catalog.db"
	RecordsBucket = "Records" // record ID to JSON-encoded record
	MetaBucket    = "Meta"    // bookkeeping, currently only the ID order
	orderKey      = "order"

	// openTimeout bounds the wait for another process holding the file lock.
	openTimeout = 2 * time.Second
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Store manages the catalog database.
type Store struct {
	db     *bolt.DB
	path   string
	logger LoggerFunc
}

// DefaultDir is the per-user directory holding the database.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "showcase"), nil
}

// ResolvePath turns a --dbpath value into a database file path. A path ending
// in ".db" names the file itself; anything else is a directory. An empty
// value selects DefaultDir, falling back to the working directory.
func ResolvePath(dbPath string) (string, error) {
	if filepath.Ext(dbPath) == ".db" {
		return dbPath, nil
	}
	dir := dbPath
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			log.Printf("Warning: Could not get user config dir: %v. Using current dir.", err)
			d = "."
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return filepath.Join(dir, dbFileName), nil
}

// Open creates or opens the catalog database.
func Open(dbPath string, logger LoggerFunc) (*Store, error) {
	path, err := ResolvePath(dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path, logger: logger}
	s.logMessage("Using catalog database at: %s", path)

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{RecordsBucket, MetaBucket} {
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

	s.db = db
	return s, nil
}

func (s *Store) logMessage(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Path is the database file in use.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func encodeList(list []string) ([]byte, error) {
	return json.Marshal(list)
}

func decodeList(data []byte) ([]string, error) {
	var list []string
	if data == nil {
		return []string{}, nil
	}
	err := json.Unmarshal(data, &list)
	return list, err
}

func addToList(list []string, item string) ([]string, bool) {
	for _, existing := range list {
		if existing == item {
			return list, false
		}
	}
	return append(list, item), true
}

func removeFromList(list []string, item string) ([]string, bool) {
	out := list[:0]
	removed := false
	for _, existing := range list {
		if existing == item {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}

// updateOrder adds or removes id in the stored order list.
func updateOrder(tx *bolt.Tx, id string, add bool) error {
	meta := tx.Bucket([]byte(MetaBucket))
	order, err := decodeList(meta.Get([]byte(orderKey)))
	if err != nil {
		return fmt.Errorf("failed to decode record order: %w", err)
	}
	var changed bool
	if add {
		order, changed = addToList(order, id)
	} else {
		order, changed = removeFromList(order, id)
	}
	if !changed {
		return nil
	}
	data, err := encodeList(order)
	if err != nil {
		return fmt.Errorf("failed to encode record order: %w", err)
	}
	return meta.Put([]byte(orderKey), data)
}

// Put inserts or replaces a record. New records go to the end of the order.
func (s *Store) Put(rec catalog.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(RecordsBucket)).Put([]byte(rec.ID), data); err != nil {
			return fmt.Errorf("failed to store record %s: %w", rec.ID, err)
		}
		return updateOrder(tx, rec.ID, true)
	})
}

// PutAll stores records in a single transaction. It returns how many were new.
func (s *Store) PutAll(records catalog.Records) (int, error) {
	added := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RecordsBucket))
		for _, rec := range records {
			if err := rec.Validate(); err != nil {
				return err
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
			}
			if bucket.Get([]byte(rec.ID)) == nil {
				added++
			}
			if err := bucket.Put([]byte(rec.ID), data); err != nil {
				return fmt.Errorf("failed to store record %s: %w", rec.ID, err)
			}
			if err := updateOrder(tx, rec.ID, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logMessage("Stored %d records (%d new)", len(records), added)
	return added, nil
}

// Get returns the record with the given ID, or catalog.ErrMissingRecord.
func (s *Store) Get(id string) (*catalog.Record, error) {
	var rec *catalog.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(RecordsBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", catalog.ErrMissingRecord, id)
		}
		rec = &catalog.Record{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("failed to decode record %s: %w", id, err)
		}
		return nil
	})
	return rec, err
}

// List returns every record in insertion order.
func (s *Store) List() (catalog.Records, error) {
	records := catalog.Records{}
	err := s.db.View(func(tx *bolt.Tx) error {
		order, err := decodeList(tx.Bucket([]byte(MetaBucket)).Get([]byte(orderKey)))
		if err != nil {
			return fmt.Errorf("failed to decode record order: %w", err)
		}
		bucket := tx.Bucket([]byte(RecordsBucket))
		for _, id := range order {
			data := bucket.Get([]byte(id))
			if data == nil {
				s.logMessage("Record %s listed in order but missing, skipping", id)
				continue
			}
			var rec catalog.Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("failed to decode record %s: %w", id, err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a record. Deleting an unknown ID returns catalog.ErrMissingRecord.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RecordsBucket))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", catalog.ErrMissingRecord, id)
		}
		if err := bucket.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", id, err)
		}
		return updateOrder(tx, id, false)
	})
}

// Fetch implements catalog.Source.
func (s *Store) Fetch(ctx context.Context) (catalog.Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrFetchFailure, err)
	}
	records, err := s.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrFetchFailure, err)
	}
	return records, nil
}
