// Package bigcache adapts allegro/bigcache. Entries share the global LifeWindow;
// per-key TTLs are ignored.
package bigcache

import (
	"context"
	"errors"
	"strings"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/hubcache/provider"
)

type Provider struct {
	c *bc.BigCache
}

var (
	_ pr.Provider      = (*Provider)(nil)
	_ pr.PrefixScanner = (*Provider)(nil)
)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	return true, p.c.Set(key, value)
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Keys iterates every shard. Entries are copied by the iterator, so this is
// O(cache size) and meant for invalidation, not hot reads.
func (p *Provider) Keys(_ context.Context, prefix string) ([]string, error) {
	var out []string
	it := p.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			if errors.Is(err, bc.ErrInvalidIteratorState) {
				break
			}
			return nil, err
		}
		if strings.HasPrefix(e.Key(), prefix) {
			out = append(out, e.Key())
		}
	}
	return out, nil
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
