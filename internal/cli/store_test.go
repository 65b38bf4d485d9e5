package cli

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/hubcache"
	"github.com/unkn0wn-root/hubcache/config"
)

func TestNewProvider(t *testing.T) {
	cases := []struct {
		body string
		ok   bool
	}{
		{"provider: ristretto\n", true},
		{bigcacheConfig, true},
		{"provider: redis\nredis:\n  addr: 127.0.0.1:1\n", true},
	}
	for _, tc := range cases {
		cfg, err := config.Load(writeConfig(t, tc.body))
		if err != nil {
			t.Fatalf("load %q: %v", tc.body, err)
		}
		p, err := newProvider(cfg)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: err=%v", cfg.Provider, err)
		}
		if p != nil {
			_ = p.Close(context.Background())
		}
	}

	if _, err := newProvider(&config.Config{Provider: "memcached"}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestOpenStoreRefusesInProcessProviders(t *testing.T) {
	for _, name := range []string{"ristretto", "bigcache"} {
		cfg := &config.Config{Namespace: "hub", Provider: name, GenStore: "local"}
		s, err := openStore(cfg, hubcache.NewKeyService(hubcache.KeyOptions{}), zap.NewNop())
		if !errors.Is(err, errNotShared) || s != nil {
			t.Fatalf("%s: store=%v err=%v", name, s, err)
		}
	}
}
