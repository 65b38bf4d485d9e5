package hubcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	c "github.com/unkn0wn-root/hubcache/codec"
	pr "github.com/unkn0wn-root/hubcache/provider"
)

func loader(v sensor, calls *int) func(context.Context) (sensor, error) {
	return func(context.Context) (sensor, error) {
		*calls++
		return v, nil
	}
}

// ==============================
// Construction
// ==============================

func TestNewManagerValidates(t *testing.T) {
	if _, err := NewManager(Options{Namespace: "hub"}); err == nil {
		t.Fatalf("expected provider error")
	}
	if _, err := NewManager(Options{Provider: newMemProvider()}); err == nil {
		t.Fatalf("expected namespace error")
	}
}

// ==============================
// Get-or-populate
// ==============================

func TestGetPopulatesOnceAndUsesCacheTime(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	m := newTestManager(t, mp, func(o *Options) { o.DefaultCacheTime = 42 * time.Minute })
	cache := NewCache[sensor](m, c.JSON[sensor]{})
	keys := KeysFor[sensor](AppNamespace)

	k, err := m.Keys().PrepareKeyForShortTermCache(keys.ByID, 5)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	want := sensor{ID: 5, DeviceID: 9, Name: "roof"}
	for i := 0; i < 3; i++ {
		got, err := cache.Get(ctx, k, loader(want, &calls))
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != want {
			t.Fatalf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("acquire called %d times", calls)
	}
	if mp.lastTTL != ShortTermCacheTime {
		t.Fatalf("ttl=%v want %v", mp.lastTTL, ShortTermCacheTime)
	}
	if !mp.has("single:hub:App.sensor.byid.5") {
		t.Fatalf("storage key missing")
	}

	// no CacheTime on the key => manager default
	plain := mustPrepare(t, m.Keys(), keys.ByID, 6)
	if _, err := cache.Get(ctx, plain, loader(sensor{ID: 6}, &calls)); err != nil {
		t.Fatal(err)
	}
	if mp.lastTTL != 42*time.Minute {
		t.Fatalf("default ttl=%v", mp.lastTTL)
	}
}

func TestGetAcquireErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	m := newTestManager(t, mp, nil)
	cache := NewCache[sensor](m, c.JSON[sensor]{})
	k := mustPrepare(t, m.Keys(), KeysFor[sensor](AppNamespace).ByID, 1)

	boom := errors.New("db down")
	if _, err := cache.Get(ctx, k, func(context.Context) (sensor, error) { return sensor{}, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected acquire error, got %v", err)
	}
	if mp.len() != 0 {
		t.Fatalf("failed acquire should not populate")
	}
}

func TestPopulateSkippedWhenInvalidatedDuringAcquire(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	m := newTestManager(t, mp, nil)
	cache := NewCache[sensor](m, c.JSON[sensor]{})
	tmpl := KeysFor[sensor](AppNamespace).ByID
	k := mustPrepare(t, m.Keys(), tmpl, 5)

	stale := sensor{ID: 5, Name: "old"}
	got, err := cache.Get(ctx, k, func(ctx context.Context) (sensor, error) {
		// a concurrent writer commits and invalidates while we are loading
		if err := m.Remove(ctx, tmpl, 5); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		return stale, nil
	})
	if err != nil || got != stale {
		t.Fatalf("Get: %+v %v", got, err)
	}
	if _, ok, _ := cache.Peek(ctx, k); ok {
		t.Fatalf("stale value must not be cached after invalidation")
	}
}

// ==============================
// Self-heal
// ==============================

func TestSelfHealOnCorruptAndStale(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	m := newTestManager(t, mp, nil)
	cache := NewCache[sensor](m, c.Limit[sensor]{Inner: c.Msgpack[sensor]{}, MaxDecode: 64})
	k := mustPrepare(t, m.Keys(), KeysFor[sensor](AppNamespace).ByID, 3)
	sk := m.storageKey(k.Key)

	if _, err := mp.Set(ctx, sk, []byte("not-wire-format"), 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Peek(ctx, k); err != nil || ok {
		t.Fatalf("corrupt entry should miss: ok=%v err=%v", ok, err)
	}
	if mp.has(sk) {
		t.Fatalf("corrupt entry was not deleted")
	}

	if err := cache.Set(ctx, k, sensor{ID: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.gen.Bump(ctx, sk); err != nil { // make it stale without deleting
		t.Fatal(err)
	}
	if _, ok, _ := cache.Peek(ctx, k); ok {
		t.Fatalf("stale entry should miss")
	}
	if mp.has(sk) {
		t.Fatalf("stale entry was not deleted")
	}

	// a payload the codec refuses is dropped as well
	if err := cache.Set(ctx, k, sensor{ID: 3, Name: strings.Repeat("x", 100)}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cache.Peek(ctx, k); ok || mp.has(sk) {
		t.Fatalf("undecodable entry should miss and be deleted")
	}
}

func TestProviderMissDropsIndexEntry(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		lose func(p *memProvider, sk string)
	}{
		{"evicted", func(p *memProvider, sk string) {
			p.mu.Lock()
			delete(p.m, sk)
			p.mu.Unlock()
		}},
		{"expired", func(p *memProvider, sk string) {
			p.mu.Lock()
			e := p.m[sk]
			e.exp = time.Now().Add(-time.Second)
			p.m[sk] = e
			p.mu.Unlock()
		}},
	}
	for _, tc := range cases {
		mp := newMemProvider()
		m := newTestManager(t, mp, nil)
		cache := NewCache[sensor](m, c.JSON[sensor]{})
		keep := mustPrepare(t, m.Keys(), KeysFor[sensor](AppNamespace).ByID, 1)
		lost := mustPrepare(t, m.Keys(), KeysFor[sensor](AppNamespace).ByID, 2)
		for _, k := range []CacheKey{keep, lost} {
			if err := cache.Set(ctx, k, sensor{ID: 1}); err != nil {
				t.Fatalf("%s: Set: %v", tc.name, err)
			}
		}
		if n := m.index.len(); n != 2 {
			t.Fatalf("%s: index len %d want 2", tc.name, n)
		}

		tc.lose(mp, m.storageKey(lost.Key))
		if _, ok, err := cache.Peek(ctx, lost); err != nil || ok {
			t.Fatalf("%s: Peek ok=%v err=%v", tc.name, ok, err)
		}
		if n := m.index.len(); n != 1 {
			t.Fatalf("%s: index len %d want 1", tc.name, n)
		}
		if got := m.index.match(m.storageKey(lost.Key)); len(got) != 0 {
			t.Fatalf("%s: lost key still indexed: %v", tc.name, got)
		}
	}
}

// ==============================
// Removal
// ==============================

func TestRemoveByPrefixWithLocalIndex(t *testing.T) {
	testRemoveByPrefix(t, newMemProvider())
}

func TestRemoveByPrefixWithScanner(t *testing.T) {
	testRemoveByPrefix(t, &scanProvider{memProvider: newMemProvider()})
}

func testRemoveByPrefix(t *testing.T, p pr.Provider) {
	t.Helper()
	ctx := context.Background()
	m := newTestManager(t, p, nil)
	cache := NewCache[sensor](m, c.JSON[sensor]{})
	sk := KeysFor[sensor](AppNamespace)
	dk := KeysFor[device](AppNamespace)

	seed := []CacheKey{
		mustPrepare(t, m.Keys(), sk.ByID, 5),
		mustPrepare(t, m.Keys(), sk.ByID, 6),
		mustPrepare(t, m.Keys(), sk.All),
		mustPrepare(t, m.Keys(), dk.ByID, 5),
	}
	for _, k := range seed {
		if err := cache.Set(ctx, k, sensor{ID: 1}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := m.RemoveByPrefix(ctx, sk.ByIDPrefix, 5)
	if err != nil || n != 1 {
		t.Fatalf("by-id prefix: n=%d err=%v", n, err)
	}
	if _, ok, _ := cache.Peek(ctx, seed[0]); ok {
		t.Fatalf("sensor 5 still cached")
	}
	if _, ok, _ := cache.Peek(ctx, seed[1]); !ok {
		t.Fatalf("sensor 6 should survive")
	}

	n, err = m.RemoveByPrefix(ctx, sk.Prefix)
	if err != nil || n != 2 {
		t.Fatalf("type prefix: n=%d err=%v", n, err)
	}
	if _, ok, _ := cache.Peek(ctx, seed[3]); !ok {
		t.Fatalf("device entry must not be touched by the sensor prefix")
	}

	if n, err := m.RemoveByPrefix(ctx, sk.Prefix); err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}
}

func TestRemoveByPrefixScanError(t *testing.T) {
	p := &scanProvider{memProvider: newMemProvider(), scanErr: errStoreDown}
	m := newTestManager(t, p, nil)
	if _, err := m.RemoveByPrefix(context.Background(), "App.sensor."); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected scan error, got %v", err)
	}
}

func TestRemoveReportsDeleteFailure(t *testing.T) {
	mp := newMemProvider()
	mp.failDel = errStoreDown
	m := newTestManager(t, mp, nil)

	err := m.Remove(context.Background(), KeysFor[sensor](AppNamespace).ByID, 5)
	var ie *InvalidateError
	if !errors.As(err, &ie) || !errors.Is(err, errStoreDown) {
		t.Fatalf("expected InvalidateError wrapping delete failure, got %v", err)
	}
	if ie.Key != "single:hub:App.sensor.byid.5" {
		t.Fatalf("key=%q", ie.Key)
	}
}

func TestRemoveParamFormatting(t *testing.T) {
	m := newTestManager(t, newMemProvider(), nil)
	tmpl := KeysFor[sensor](AppNamespace).ByID
	if err := m.Remove(context.Background(), tmpl, nil); err != nil {
		t.Fatalf("nil param should format as null: %v", err)
	}
	if _, err := m.RemoveByPrefix(context.Background(), "App.{0}.{1}", 1); !errors.Is(err, ErrKeyFormat) {
		t.Fatalf("expected ErrKeyFormat, got %v", err)
	}
}

func TestDisabledManager(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	m := newTestManager(t, mp, func(o *Options) { o.Disabled = true })
	cache := NewCache[sensor](m, c.JSON[sensor]{})
	k := mustPrepare(t, m.Keys(), KeysFor[sensor](AppNamespace).ByID, 1)

	calls := 0
	for i := 0; i < 2; i++ {
		if _, err := cache.Get(ctx, k, loader(sensor{ID: 1}, &calls)); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 || mp.len() != 0 {
		t.Fatalf("disabled cache must always load: calls=%d stored=%d", calls, mp.len())
	}
	if err := m.Remove(ctx, k); err != nil {
		t.Fatal(err)
	}
}
