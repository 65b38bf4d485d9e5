// Package provider defines the byte store hubcache keeps prepared keys in.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly the
// []byte previously passed to Set for a key (no metadata, no re-encoding).
//
// The keyspace "single:<ns>:" is owned by hubcache. External code MUST NOT
// write under it; foreign values are treated as corruption and deleted.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL (<= 0 means no expiry). May ignore cost.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Removing a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// PrefixScanner is implemented by providers that can enumerate their own keys.
// Providers without it rely on the manager's local key index for prefix removal,
// which only sees keys written by the same process.
type PrefixScanner interface {
	// Keys returns every stored key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
