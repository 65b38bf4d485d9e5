package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/hubcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

const defaultScanCount = 500

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
}

var (
	_ pr.Provider      = (*Redis)(nil)
	_ pr.PrefixScanner = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool  // set true only if this provider exclusively owns the client
	ScanCount   int64 // SCAN COUNT hint for prefix removal; 0 => 500
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	sc := cfg.ScanCount
	if sc <= 0 {
		sc = defaultScanCount
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, scanCount: sc}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // no expiry
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// Keys walks the keyspace with SCAN MATCH. Glob metacharacters in prefix are
// escaped so dots and brackets in cache keys match literally.
func (p *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	it := p.rdb.Scan(ctx, 0, escapeGlob(prefix)+"*", p.scanCount).Iterator()
	for it.Next(ctx) {
		out = append(out, it.Val())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string { return globEscaper.Replace(s) }
