// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

// Package teststore implements an in-memory KeyValueStore for tests.
package teststore

import (
	"sync"

	"github.com/movielab/searchsync/storage"
)

// Store implements storage.KeyValueStore in memory.
type Store struct {
	mu     sync.Mutex
	values map[string]string

	// forcedError, when set, is returned from every call. Tests use it to
	// simulate a state store outage.
	forcedError error
}

// New creates an empty store.
func New() *Store {
	return &Store{values: map[string]string{}}
}

// SetError forces every subsequent call to fail with err. Passing nil clears
// the failure.
func (store *Store) SetError(err error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.forcedError = err
}

// Get returns the value stored under key.
func (store *Store) Get(key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.forcedError != nil {
		return "", store.forcedError
	}
	value, ok := store.values[key]
	if !ok {
		return "", storage.ErrKeyNotFound.New("%q", key)
	}
	return value, nil
}

// Set overwrites the value stored under key.
func (store *Store) Set(key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.forcedError != nil {
		return store.forcedError
	}
	store.values[key] = value
	return nil
}

// Keys returns a snapshot of the stored keys.
func (store *Store) Keys() []string {
	store.mu.Lock()
	defer store.mu.Unlock()
	keys := make([]string, 0, len(store.values))
	for key := range store.values {
		keys = append(keys, key)
	}
	return keys
}

// Close closes the store.
func (store *Store) Close() error { return nil }
