// Package prefs persists the user's model preferences in an embedded
// BadgerDB so they survive process restarts. Writes initiated by the
// orchestrator are fire-and-forget; Close flushes them.
package prefs

import (
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"modelmgr/internal/common/fsutil"
	"modelmgr/pkg/types"
)

const (
	keyPreferredModel  = "prefs/preferred_model"
	keyLastLoadedModel = "prefs/last_loaded_model"
	keyAutoLoad        = "prefs/auto_load"
)

// Store is a durable key-value store for preferences. Safe for concurrent
// use.
type Store struct {
	db  *badger.DB
	wg  sync.WaitGroup
	log zerolog.Logger
}

// Open opens (or creates) the store under dir.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	base, err := fsutil.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(base).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// OpenInMemory opens a store with no disk persistence, for tests.
func OpenInMemory(log zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close waits for pending asynchronous writes and closes the database.
func (s *Store) Close() error {
	s.wg.Wait()
	return s.db.Close()
}

func (s *Store) get(key string) (string, bool) {
	var val string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		b, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		val = string(b)
		return nil
	})
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *Store) set(key, val string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(val))
	})
}

func (s *Store) delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// setAsync applies a write on a background goroutine so callers on the
// lifecycle path never block on disk.
func (s *Store) setAsync(key, val string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.set(key, val); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("preference write failed")
		}
	}()
}

// PreferredModel returns the explicit user choice, empty when unset.
func (s *Store) PreferredModel() string {
	v, _ := s.get(keyPreferredModel)
	return v
}

// SetPreferredModel records an explicit user choice. An empty key clears it.
func (s *Store) SetPreferredModel(key string) error {
	if key == "" {
		return s.delete(keyPreferredModel)
	}
	return s.set(keyPreferredModel, key)
}

// LastLoadedModel returns the key that last loaded successfully.
func (s *Store) LastLoadedModel() string {
	v, _ := s.get(keyLastLoadedModel)
	return v
}

// SetLastLoadedModel records a successful load synchronously.
func (s *Store) SetLastLoadedModel(key string) error {
	return s.set(keyLastLoadedModel, key)
}

// SetLastLoadedModelAsync records a successful load without blocking the
// caller.
func (s *Store) SetLastLoadedModelAsync(key string) {
	s.setAsync(keyLastLoadedModel, key)
}

// AutoLoadEnabled defaults to true when never set.
func (s *Store) AutoLoadEnabled() bool {
	v, ok := s.get(keyAutoLoad)
	if !ok {
		return true
	}
	return v == "1"
}

// SetAutoLoadEnabled records the auto-load flag.
func (s *Store) SetAutoLoadEnabled(enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return s.set(keyAutoLoad, v)
}

// Preferences loads all fields at once.
func (s *Store) Preferences() types.Preferences {
	return types.Preferences{
		PreferredModelKey:  s.PreferredModel(),
		LastLoadedModelKey: s.LastLoadedModel(),
		AutoLoadEnabled:    s.AutoLoadEnabled(),
	}
}
