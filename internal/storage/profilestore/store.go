// Package profilestore implements a small JSON document store on badger,
// with the partial-merge and array-union semantics the patient profile
// endpoints need.
package profilestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/dgraph-io/badger/v3"
)

var ErrNotFound = errors.New("document not found")

// Store is a badger-backed key to JSON-document map.
type Store struct {
	db *badger.DB
}

// Open creates the storage directory if needed and opens the database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(path, "badger"))
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores doc under key, replacing any existing document.
func (s *Store) Put(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Get unmarshals the document at key into out.
func (s *Store) Get(key string, out any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	return nil
}

// Delete removes the document at key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Merge overlays the given fields onto the document at key, leaving every
// other field untouched. Fails with ErrNotFound when no document exists.
func (s *Store) Merge(key string, fields map[string]any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		doc := map[string]any{}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return err
		}

		for k, v := range fields {
			doc[k] = v
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), data)
	})
}

// AppendUnique appends entry to the array field of the document at key,
// skipping the write when an equal entry is already present.
func (s *Store) AppendUnique(key, field string, entry any) error {
	normalized, err := normalize(entry)
	if err != nil {
		return fmt.Errorf("failed to normalize entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		doc := map[string]any{}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return err
		}

		existing, _ := doc[field].([]any)
		for _, have := range existing {
			if reflect.DeepEqual(have, normalized) {
				return nil
			}
		}
		doc[field] = append(existing, normalized)

		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), data)
	})
}

// normalize round-trips entry through JSON so equality checks compare the
// stored representation, not the Go type.
func normalize(entry any) (any, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
