package hubcache

import (
	"time"

	gen "github.com/unkn0wn-root/hubcache/genstore"
	pr "github.com/unkn0wn-root/hubcache/provider"
)

// SetCostFunc computes the admission cost of one stored entry (ristretto).
type SetCostFunc func(storageKey string, raw []byte) int64

// Options configure a Manager. Only Namespace and Provider are required.
type Options struct {
	// Required
	Namespace string // isolates this cache inside a shared store, e.g. "hub", "dash"
	Provider  pr.Provider

	// Keys prepares keys and prefixes. nil => NewKeyService with the two durations below.
	Keys               *KeyService
	DefaultCacheTime   time.Duration // 0 => 60m
	ShortTermCacheTime time.Duration // 0 => 3m

	Logger          Logger        // nil => NopLogger
	Hooks           Hooks         // nil => NopHooks
	GenStore        gen.GenStore  // nil => LocalGenStore owned by the manager
	CleanupInterval time.Duration // local gen sweep; 0 => 1h
	GenRetention    time.Duration // 0 => 30d
	ComputeSetCost  SetCostFunc   // nil => 1 per entry
	Disabled        bool          // every read misses, every write and removal is a no-op
}

// NewManager builds the store-facing side of hubcache: prefix-aware removal
// plus the generation bookkeeping that Cache[V] reads and writes through.
func NewManager(opts Options) (*Manager, error) {
	return newManager(opts)
}
