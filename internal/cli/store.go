package cli

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/hubcache"
	"github.com/unkn0wn-root/hubcache/config"
	"github.com/unkn0wn-root/hubcache/genstore"
	zaplog "github.com/unkn0wn-root/hubcache/log/zap"
	pr "github.com/unkn0wn-root/hubcache/provider"
	bcprov "github.com/unkn0wn-root/hubcache/provider/bigcache"
	redisprov "github.com/unkn0wn-root/hubcache/provider/redis"
	rprov "github.com/unkn0wn-root/hubcache/provider/ristretto"
)

var errNotShared = errors.New("command needs a shared store")

// store is a Manager plus whatever it does not own.
type store struct {
	*hubcache.Manager
	gen genstore.GenStore // nil when the manager owns a local one
}

func (s *store) Close(ctx context.Context) error {
	err := s.Manager.Close(ctx)
	if s.gen != nil {
		_ = s.gen.Close(ctx)
	}
	return err
}

// openStore connects to the store other processes write to. In-process
// providers are refused since a fresh one starts empty.
func openStore(cfg *config.Config, keys *hubcache.KeyService, log *zap.Logger) (*store, error) {
	if cfg.Provider != "redis" {
		return nil, fmt.Errorf("%w: set provider: redis (in-process %s starts empty)", errNotShared, cfg.Provider)
	}
	p, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	opts := hubcache.Options{
		Namespace: cfg.Namespace,
		Provider:  p,
		Keys:      keys,
		Logger:    zaplog.New(log),
		Disabled:  cfg.Disabled,
	}

	s := &store{}
	if cfg.GenStore == "redis" {
		s.gen = genstore.NewRedisGenStoreWithTTL(newRedisClient(cfg.Redis), cfg.Namespace, cfg.Redis.GenTTL)
		opts.GenStore = s.gen
	}
	m, err := hubcache.NewManager(opts)
	if err != nil {
		_ = p.Close(context.Background())
		if s.gen != nil {
			_ = s.gen.Close(context.Background())
		}
		return nil, err
	}
	s.Manager = m
	log.Debug("store opened",
		zap.String("namespace", cfg.Namespace),
		zap.String("provider", cfg.Provider),
		zap.String("genstore", cfg.GenStore))
	return s, nil
}

func newProvider(cfg *config.Config) (pr.Provider, error) {
	switch cfg.Provider {
	case "ristretto":
		p, err := rprov.New(rprov.Config{
			NumCounters: cfg.Ristretto.NumCounters,
			MaxCost:     cfg.Ristretto.MaxCost,
			BufferItems: cfg.Ristretto.BufferItems,
			Metrics:     cfg.Ristretto.Metrics,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "bigcache":
		p, err := bcprov.New(bcprov.Config{
			LifeWindow:         cfg.Bigcache.LifeWindow,
			CleanWindow:        cfg.Bigcache.CleanWindow,
			MaxEntriesInWindow: cfg.Bigcache.MaxEntriesInWindow,
			MaxEntrySize:       cfg.Bigcache.MaxEntrySize,
			HardMaxCacheSizeMB: cfg.Bigcache.HardMaxCacheSizeMB,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "redis":
		p, err := redisprov.New(redisprov.Config{
			Client:      newRedisClient(cfg.Redis),
			CloseClient: true,
			ScanCount:   cfg.Redis.ScanCount,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func newRedisClient(c config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
}
