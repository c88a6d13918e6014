package locals

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that hold no value.
var ErrNotFound = errors.New("local value not found")

// Store is a key/value store of configuration values. Values are JSON-like
// data: strings, float64 numbers, bools, []any and map[string]any.
type Store interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	// Keys returns the stored keys, sorted.
	Keys(ctx context.Context) ([]string, error)
}
