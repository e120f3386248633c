// Package kv implements the flat string-keyed durable store that holds all
// persisted state: credentials under "user:<username>", the device session
// under "session", and each user's note collection under "notes:<username>".
package kv

import "context"

// Repository describes the operations of the flat key-value store.
type Repository interface {
	// Get returns the value stored under key, or (nil, nil) when the key
	// is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all stored key-value pairs.
	List(ctx context.Context) (map[string][]byte, error)

	// Clear removes every key.
	Clear(ctx context.Context) error
}
