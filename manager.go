package hubcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	gen "github.com/unkn0wn-root/hubcache/genstore"
	"github.com/unkn0wn-root/hubcache/internal/wire"
	pr "github.com/unkn0wn-root/hubcache/provider"
)

const (
	defaultGenRetention = 30 * 24 * time.Hour
	defaultSweep        = time.Hour
)

// Manager is the static cache manager: it owns storage keys, generations and
// removal. Typed reads and writes go through Cache[V].
type Manager struct {
	ns             string
	provider       pr.Provider
	scanner        pr.PrefixScanner // nil => index
	index          *keyIndex
	keys           *KeyService
	log            Logger
	hooks          Hooks
	enabled        bool
	computeSetCost SetCostFunc
	gen            gen.GenStore
	ownsGen        bool
}

func newManager(opts Options) (*Manager, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("hubcache: provider is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("hubcache: namespace is required")
	}

	m := &Manager{
		ns:       opts.Namespace,
		provider: opts.Provider,
		keys:     opts.Keys,
		enabled:  !opts.Disabled,
	}
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	if m.keys == nil {
		m.keys = NewKeyService(KeyOptions{
			DefaultCacheTime:   opts.DefaultCacheTime,
			ShortTermCacheTime: opts.ShortTermCacheTime,
		})
	}
	if opts.ComputeSetCost != nil {
		m.computeSetCost = opts.ComputeSetCost
	} else {
		m.computeSetCost = func(string, []byte) int64 { return 1 }
	}
	if sc, ok := opts.Provider.(pr.PrefixScanner); ok {
		m.scanner = sc
	} else {
		m.index = newKeyIndex()
	}
	if opts.GenStore != nil {
		m.gen = opts.GenStore
	} else {
		m.gen = gen.NewLocalGenStore(
			coalesce[time.Duration](opts.CleanupInterval, defaultSweep),
			coalesce[time.Duration](opts.GenRetention, defaultGenRetention),
		)
		m.ownsGen = true
	}
	return m, nil
}

func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) Namespace() string { return m.ns }

// Keys returns the key service every key and prefix is prepared with.
func (m *Manager) Keys() *KeyService { return m.keys }

func (m *Manager) Close(ctx context.Context) error {
	if m.ownsGen {
		_ = m.gen.Close(ctx)
	}
	return m.provider.Close(ctx)
}

// Remove deletes one key. With params, key is treated as a template and
// prepared first; without, key must already be prepared.
func (m *Manager) Remove(ctx context.Context, key CacheKey, params ...any) error {
	if !m.enabled {
		return nil
	}
	if len(params) > 0 {
		k, err := m.keys.PrepareKey(key, params...)
		if err != nil {
			return err
		}
		key = k
	}
	sk := m.storageKey(key.Key)
	_, bumpErr := m.gen.Bump(ctx, sk)
	if err := m.drop(ctx, sk, bumpErr); err != nil {
		return err
	}
	m.log.Debug("removed key", Fields{"key": key.Key})
	return nil
}

// RemoveByPrefix deletes every key starting with prefix (prepared with params)
// and reports how many storage keys were dropped. Failures on individual keys
// do not stop the sweep; they come back joined.
func (m *Manager) RemoveByPrefix(ctx context.Context, prefix string, params ...any) (int, error) {
	if !m.enabled {
		return 0, nil
	}
	p, err := m.keys.PreparePrefix(prefix, params...)
	if err != nil {
		return 0, err
	}
	sp := m.storageKey(p)

	var keys []string
	if m.scanner != nil {
		keys, err = m.scanner.Keys(ctx, sp)
		if err != nil {
			return 0, fmt.Errorf("hubcache: scan prefix %q: %w", p, err)
		}
	} else {
		keys = m.index.match(sp)
	}
	if len(keys) == 0 {
		m.hooks.PrefixRemoved(p, 0)
		return 0, nil
	}

	bumpErr := m.gen.BumpMany(ctx, keys)
	var errs []error
	removed := 0
	for _, sk := range keys {
		if err := m.drop(ctx, sk, bumpErr); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	m.hooks.PrefixRemoved(p, removed)
	m.log.Debug("removed by prefix", Fields{"prefix": p, "removed": removed})
	return removed, errors.Join(errs...)
}

// drop deletes a storage key whose generation was just bumped (or failed to).
func (m *Manager) drop(ctx context.Context, sk string, bumpErr error) error {
	delErr := m.provider.Del(ctx, sk)
	if m.index != nil && delErr == nil {
		m.index.remove(sk)
	}
	switch {
	case bumpErr != nil && delErr != nil:
		m.hooks.InvalidateOutage(sk, bumpErr, delErr)
	case bumpErr != nil:
		m.hooks.GenBumpError(sk, bumpErr)
	}
	if bumpErr == nil && delErr == nil {
		return nil
	}
	return &InvalidateError{Key: sk, BumpErr: bumpErr, DelErr: delErr}
}

// read returns the payload stored under sk if it is intact and current.
// Anything else is deleted and reported as a miss.
func (m *Manager) read(ctx context.Context, sk string) ([]byte, bool, error) {
	raw, ok, err := m.provider.Get(ctx, sk)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// evicted or expired behind our back
		if m.index != nil {
			m.index.remove(sk)
		}
		return nil, false, nil
	}
	g, payload, err := wire.Decode(raw)
	if err != nil {
		m.selfHeal(ctx, sk, "corrupt")
		return nil, false, nil
	}
	if g != m.snapshotGen(ctx, sk) {
		m.selfHeal(ctx, sk, "gen_mismatch")
		return nil, false, nil
	}
	return payload, true, nil
}

// write stores payload under sk unless sk was invalidated after obs was taken.
func (m *Manager) write(ctx context.Context, sk string, payload []byte, obs uint64, ttl time.Duration) error {
	if cur := m.snapshotGen(ctx, sk); cur != obs {
		m.log.Debug("populate skipped (gen moved)", Fields{"key": sk, "obs": obs, "cur": cur})
		return nil
	}
	raw := wire.Encode(obs, payload)
	ok, err := m.provider.Set(ctx, sk, raw, m.computeSetCost(sk, raw), ttl)
	if err != nil {
		return err
	}
	if !ok {
		m.hooks.ProviderSetRejected(sk)
		m.log.Debug("populate rejected by provider (pressure)", Fields{"key": sk})
		return nil
	}
	if m.index != nil {
		m.index.add(sk)
	}
	return nil
}

func (m *Manager) selfHeal(ctx context.Context, sk, reason string) {
	_ = m.provider.Del(ctx, sk)
	if m.index != nil {
		m.index.remove(sk)
	}
	m.hooks.SelfHealSingle(sk, reason)
}

func (m *Manager) snapshotGen(ctx context.Context, sk string) uint64 {
	g, err := m.gen.Snapshot(ctx, sk)
	if err != nil {
		// 0 makes reads of bumped keys self-heal and CAS writes skip
		m.log.Warn("gen snapshot error", Fields{"key": sk, "err": err})
		m.hooks.GenSnapshotError(sk, err)
		return 0
	}
	return g
}

func (m *Manager) ttl(key CacheKey) time.Duration {
	if key.CacheTime > 0 {
		return key.CacheTime
	}
	return m.keys.DefaultCacheTime()
}

func (m *Manager) storageKey(key string) string {
	return "single:" + m.ns + ":" + key
}
