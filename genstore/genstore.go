// Package genstore keeps per-key generation counters. A removal bumps the
// generation; a populate that observed an older generation is dropped.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generations live.
// Use LocalGenStore (default) for one process, RedisGenStore when several hub
// replicas share one cache.
type GenStore interface {
	// Snapshot returns the current generation; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// BumpMany increments every key; used by prefix removal.
	BumpMany(ctx context.Context, storageKeys []string) error
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
