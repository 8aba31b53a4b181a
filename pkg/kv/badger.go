package kv

import (
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Config holds badger store parameters.
type Config struct {
	Dir        string
	SyncWrites bool
	InMemory   bool
}

// BadgerStore implements System on top of a badger database.
type BadgerStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// NewBadgerStore opens (or creates) a badger database at cfg.Dir.
// With cfg.InMemory set, no files are written; used by tests and the CLI.
func NewBadgerStore(cfg *Config) (*BadgerStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}

	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database. Safe to call more than once.
func (bs *BadgerStore) Close() error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.closed {
		return nil
	}

	bs.closed = true
	return bs.db.Close()
}

func (bs *BadgerStore) isClosed() bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.closed
}

func (bs *BadgerStore) Get(key []byte) ([]byte, error) {
	if bs.isClosed() {
		return nil, ErrClosed
	}

	var value []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}

	return value, nil
}

func (bs *BadgerStore) Set(key, value []byte) error {
	if bs.isClosed() {
		return ErrClosed
	}

	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	return nil
}

func (bs *BadgerStore) Delete(key []byte) error {
	if bs.isClosed() {
		return ErrClosed
	}

	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}

	return nil
}

func (bs *BadgerStore) Exists(key []byte) (bool, error) {
	if bs.isClosed() {
		return false, ErrClosed
	}

	err := bs.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %q: %w", key, err)
	}

	return true, nil
}

// Scan returns up to limit key-value pairs whose keys carry the given prefix.
// A limit of zero or less means no limit.
func (bs *BadgerStore) Scan(prefix []byte, limit int) (map[string][]byte, error) {
	if bs.isClosed() {
		return nil, ErrClosed
	}

	results := make(map[string][]byte)
	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			results[string(item.Key())] = value
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}

	return results, nil
}
