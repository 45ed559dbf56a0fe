// Package cache provides pluggable caching for graphs and computed scenes.
//
// Three backends are available: FileCache for CLI usage, RedisCache for the
// server, and NullCache to disable caching. All backends share the same
// interface and key scheme, so the pipeline does not care which one it runs
// against.
package cache

import (
	"context"
	"time"
)

// Default TTLs per content type. Graphs change at editing speed; scenes are
// derived data and can be recomputed, so they expire sooner.
const (
	TTLGraph = 24 * time.Hour
	TTLScene = 1 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Get returns (data, hit, error): a miss is (nil, false, nil), never an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
