// Package store provides the key/value persistence used to keep a crafting
// session across runs.
//
// Two backends exist:
//
//	Badger - embedded BadgerDB, single process, change feed via Subscribe
//	Dir    - one file per key, shared between processes, change feed via fsnotify
//
// Values are opaque bytes; callers own the encoding.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Change describes a write observed on a watched key.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Store is a small key/value store with change notification.
//
// Thread Safety: implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Watch calls fn for every change to one of keys until ctx is done.
	// It blocks; run it on its own goroutine. fn is called from a single
	// goroutine, in the order changes were observed.
	Watch(ctx context.Context, keys []string, fn func(Change)) error

	Close() error
}

func wanted(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
