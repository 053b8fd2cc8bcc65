package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key was never written.
var ErrNotFound = errors.New("key not found")

// Store is the durable local key-value store behind favorites, the
// recently-watched queue and user preferences. Each logical entity owns a
// distinct key and never touches another entity's key. Values are stored
// without expiry.
type Store interface {
	// Get returns the raw value under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the raw value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the underlying connection, if any.
	Close() error
}

// --- generic JSON helpers ---

// GetJSON fetches a key and JSON-unmarshals the value into T.
// Returns ErrNotFound when the key does not exist.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var zero T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, fmt.Errorf("store unmarshal %s: %w", key, err)
	}
	return v, nil
}

// SetJSON JSON-marshals v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
