package genstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGenStore shares generations across hub replicas and survives restarts.
// An optional TTL on generation keys bounds growth; an expired generation reads
// as 0 and the affected entries self-heal.
type RedisGenStore struct {
	rdb redis.UniversalClient
	ns  string        // should match Options.Namespace
	ttl time.Duration // 0 disables expiry
}

var _ GenStore = (*RedisGenStore)(nil)

func NewRedisGenStore(client redis.UniversalClient, namespace string) *RedisGenStore {
	return &RedisGenStore{rdb: client, ns: namespace}
}

// NewRedisGenStoreWithTTL refreshes ttl on every bump. ttl <= 0 disables expiry.
func NewRedisGenStoreWithTTL(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisGenStore {
	return &RedisGenStore{rdb: client, ns: namespace, ttl: ttl}
}

func (s *RedisGenStore) key(k string) string { return "gen:" + s.ns + ":" + k }

func (s *RedisGenStore) Snapshot(ctx context.Context, storageKey string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(storageKey)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis gen parse: %w", err)
	}
	return u, nil
}

// Bump pipelines INCR + EXPIRE when a TTL is configured.
func (s *RedisGenStore) Bump(ctx context.Context, storageKey string) (uint64, error) {
	k := s.key(storageKey)
	if s.ttl <= 0 {
		v, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// BumpMany sends every INCR (and EXPIRE) in one pipeline round-trip.
func (s *RedisGenStore) BumpMany(ctx context.Context, storageKeys []string) error {
	if len(storageKeys) == 0 {
		return nil
	}
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, sk := range storageKeys {
			k := s.key(sk)
			p.Incr(ctx, k)
			if s.ttl > 0 {
				p.Expire(ctx, k, s.ttl)
			}
		}
		return nil
	})
	return err
}

// Cleanup is not applicable; Redis expires keys when a TTL is set.
func (s *RedisGenStore) Cleanup(time.Duration) {}

func (s *RedisGenStore) Close(context.Context) error { return s.rdb.Close() }
