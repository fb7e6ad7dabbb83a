// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package storage

import (
	"github.com/zeebo/errs"
)

// ErrKeyNotFound is returned when a key is absent from the store.
var ErrKeyNotFound = errs.Class("key not found")

// KeyValueStore is an interface describing durable process-external string
// maps like redis. The daemon persists its progress watermarks through it.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) (string, error)
	// Set overwrites the value stored under key.
	Set(key, value string) error
	Close() error
}

// GetDefault returns the value stored under key, or fallback when the key is
// absent. Other failures are returned as-is.
func GetDefault(store KeyValueStore, key, fallback string) (string, error) {
	value, err := store.Get(key)
	if ErrKeyNotFound.Has(err) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
