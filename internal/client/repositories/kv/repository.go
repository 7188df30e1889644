// Package kv implements the key-value repository behind the client's
// durable storage.
package kv

import "context"

// Repository is a small string-keyed blob store.
//
// Get returns (nil, nil) when the key does not exist.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
