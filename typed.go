package hubcache

import (
	"context"

	c "github.com/unkn0wn-root/hubcache/codec"
)

// Cache is a typed view over a Manager. Keys must already be prepared
// (KeyService.PrepareKey and friends); values are serialized with the codec.
// Several Cache values of different V can share one Manager.
type Cache[V any] struct {
	m     *Manager
	codec c.Codec[V]
}

func NewCache[V any](m *Manager, codec c.Codec[V]) *Cache[V] {
	return &Cache[V]{m: m, codec: codec}
}

// Get returns the cached value for key or calls acquire and caches its result.
// Store errors degrade to acquire; acquire errors are returned and nothing is cached.
// A value acquired while key was being invalidated is returned but not stored.
func (c *Cache[V]) Get(ctx context.Context, key CacheKey, acquire func(context.Context) (V, error)) (V, error) {
	if !c.m.enabled {
		return acquire(ctx)
	}
	sk := c.m.storageKey(key.Key)

	obs := c.m.snapshotGen(ctx, sk)
	if v, ok, err := c.peek(ctx, sk); err != nil {
		c.m.log.Warn("cache read failed; loading from source", Fields{"key": key.Key, "err": err})
	} else if ok {
		return v, nil
	}

	v, err := acquire(ctx)
	if err != nil {
		return v, err
	}
	payload, err := c.codec.Encode(v)
	if err != nil {
		c.m.log.Warn("cache encode failed", Fields{"key": key.Key, "err": err})
		return v, nil
	}
	if err := c.m.write(ctx, sk, payload, obs, c.m.ttl(key)); err != nil {
		c.m.log.Warn("cache write failed", Fields{"key": key.Key, "err": err})
	}
	return v, nil
}

// Peek reads key without populating it.
func (c *Cache[V]) Peek(ctx context.Context, key CacheKey) (V, bool, error) {
	if !c.m.enabled {
		var zero V
		return zero, false, nil
	}
	return c.peek(ctx, c.m.storageKey(key.Key))
}

// Set stores v under key at the current generation.
func (c *Cache[V]) Set(ctx context.Context, key CacheKey, v V) error {
	if !c.m.enabled {
		return nil
	}
	sk := c.m.storageKey(key.Key)
	payload, err := c.codec.Encode(v)
	if err != nil {
		return err
	}
	return c.m.write(ctx, sk, payload, c.m.snapshotGen(ctx, sk), c.m.ttl(key))
}

func (c *Cache[V]) peek(ctx context.Context, sk string) (V, bool, error) {
	var zero V
	payload, ok, err := c.m.read(ctx, sk)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.m.selfHeal(ctx, sk, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}
