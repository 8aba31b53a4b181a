// Package kv provides a badger-backed key-value store used as the
// persistence layer for processing records.
package kv

import "errors"

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("store is closed")
)

// System defines the key-value operations the record store depends on.
// Writes to a single key are last-writer-wins; callers that read, modify,
// and write back a value get no isolation between concurrent updates.
type System interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Exists(key []byte) (bool, error)
	Scan(prefix []byte, limit int) (map[string][]byte, error)
	Close() error
}
