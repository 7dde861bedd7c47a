// Package store is the local persistence layer: a bbolt database holding
// every entity collection plus the application settings. It is the
// unconditional write target for all mutations; the remote repository is
// only ever a mirror of what lives here.
package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rooststack/coopsync/internal/models"
	bolt "go.etcd.io/bbolt"
)

const (
	// storeDirPerm is the permission mode for the database directory.
	storeDirPerm = fs.FileMode(0o700)

	// storeFilePerm is the permission mode for the database file. It
	// holds the remote access token, so keep it owner-only.
	storeFilePerm = fs.FileMode(0o600)

	// storeOpenTimeout is the maximum time to wait for the bolt
	// database lock.
	storeOpenTimeout = 5 * time.Second
)

var (
	entitiesBucket = []byte("entities")
	settingsBucket = []byte("settings")
)

// Settings keys used by the coordinator.
const (
	SettingStorageMode  = "storageMode"
	SettingRemoteConfig = "remoteConfig"
)

// Store wraps a bbolt database holding entity collections and settings.
type Store struct {
	db *bolt.DB
}

// Open opens the database at path, creating it and its parent directory
// if they do not exist. Both buckets are created on open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bolt.Open(path, storeFilePerm, &bolt.Options{Timeout: storeOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(entitiesBucket); err != nil {
			return err
		}

		_, err := tx.CreateBucketIfNotExists(settingsBucket)

		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize seeds an empty collection for every known entity that has
// no persisted value yet. Safe to call on every startup; existing data
// is never overwritten.
func (s *Store) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entitiesBucket)

		for _, entity := range models.Entities {
			if b.Get([]byte(entity)) != nil {
				continue
			}

			data, err := json.Marshal(models.Collection{})
			if err != nil {
				return err
			}

			if err := b.Put([]byte(entity), data); err != nil {
				return err
			}
		}

		return nil
	})
}

// Get returns the persisted collection for an entity, or an empty
// collection if it was never written or cannot be decoded.
func (s *Store) Get(entity string) models.Collection {
	records := models.Collection{}

	_ = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(entitiesBucket).Get([]byte(entity))
		if v == nil {
			return nil
		}

		return json.Unmarshal(v, &records)
	})

	if records == nil {
		records = models.Collection{}
	}

	return records
}

// Set persists a collection as the entity's sole serialized form. This
// is a full replace; no merging happens at this layer.
func (s *Store) Set(entity string, records models.Collection) error {
	if records == nil {
		records = models.Collection{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", entity, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entitiesBucket).Put([]byte(entity), data)
	})
	if err != nil {
		return fmt.Errorf("persisting %s: %w", entity, err)
	}

	return nil
}

// GetSetting decodes the setting stored under key into out and reports
// whether a value was present.
func (s *Store) GetSetting(key string, out any) bool {
	found := false

	_ = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(settingsBucket).Get([]byte(key))
		if v == nil {
			return nil
		}

		if err := json.Unmarshal(v, out); err != nil {
			return err
		}

		found = true

		return nil
	})

	return found
}

// SetSetting persists a setting value under key, JSON-serialized like
// entity data.
func (s *Store) SetSetting(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing setting %s: %w", key, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("persisting setting %s: %w", key, err)
	}

	return nil
}

// RemoveSetting deletes the setting stored under key. Removing an
// absent key is not an error.
func (s *Store) RemoveSetting(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Delete([]byte(key))
	})
}

// ExportAll returns every known entity's persisted collection.
func (s *Store) ExportAll() models.Snapshot {
	snapshot := make(models.Snapshot, len(models.Entities))
	for _, entity := range models.Entities {
		snapshot[entity] = s.Get(entity)
	}

	return snapshot
}

// ImportAll persists every known entity present in the snapshot in a
// single transaction. Unknown keys are ignored.
func (s *Store) ImportAll(snapshot models.Snapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entitiesBucket)

		for _, entity := range models.Entities {
			records, ok := snapshot[entity]
			if !ok {
				continue
			}

			if records == nil {
				records = models.Collection{}
			}

			data, err := json.Marshal(records)
			if err != nil {
				return fmt.Errorf("serializing %s: %w", entity, err)
			}

			if err := b.Put([]byte(entity), data); err != nil {
				return fmt.Errorf("persisting %s: %w", entity, err)
			}
		}

		return nil
	})
}

// ClearAll removes every entity collection, leaving settings intact.
func (s *Store) ClearAll() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entitiesBucket)

		for _, entity := range models.Entities {
			if err := b.Delete([]byte(entity)); err != nil {
				return err
			}
		}

		return nil
	})
}
