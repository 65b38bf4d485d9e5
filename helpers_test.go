package hubcache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/hubcache/provider"
)

type memEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type memProvider struct {
	mu      sync.Mutex
	m       map[string]memEntry
	lastTTL time.Duration
	failDel error
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.lastTTL = ttl
	p.m[key] = memEntry{v: value, exp: exp}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failDel != nil {
		return p.failDel
	}
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(_ context.Context) error { return nil }

func (p *memProvider) has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[key]
	return ok
}

func (p *memProvider) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// scanProvider adds key enumeration, like the redis and bigcache providers.
type scanProvider struct {
	*memProvider
	scanErr error
}

var _ pr.PrefixScanner = (*scanProvider)(nil)

func (p *scanProvider) Keys(_ context.Context, prefix string) ([]string, error) {
	if p.scanErr != nil {
		return nil, p.scanErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for k := range p.m {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

var errStoreDown = errors.New("store down")

type sensor struct {
	ID       int64  `json:"id"`
	DeviceID int64  `json:"device_id"`
	Name     string `json:"name"`
}

func (s sensor) EntityID() int64 { return s.ID }

type device struct{ ID int64 }

func (d *device) EntityID() int64 { return d.ID }

func newTestManager(t *testing.T, p pr.Provider, optsOpt func(*Options)) *Manager {
	t.Helper()
	opts := Options{Namespace: "hub", Provider: p}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	m, err := NewManager(opts)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func mustPrepare(t *testing.T, ks *KeyService, tmpl CacheKey, args ...any) CacheKey {
	t.Helper()
	k, err := ks.PrepareKey(tmpl, args...)
	if err != nil {
		t.Fatalf("PrepareKey(%q): %v", tmpl.Key, err)
	}
	return k
}

// recordingInvalidator captures removals instead of performing them.
type recordingInvalidator struct {
	keys     []string
	prefixes []string
	fail     error
}

func (r *recordingInvalidator) Remove(_ context.Context, key CacheKey, params ...any) error {
	k, err := NewKeyService(KeyOptions{}).PrepareKey(key, params...)
	if err != nil {
		return err
	}
	r.keys = append(r.keys, k.Key)
	return r.fail
}

func (r *recordingInvalidator) RemoveByPrefix(_ context.Context, prefix string, params ...any) (int, error) {
	p, err := NewKeyService(KeyOptions{}).PreparePrefix(prefix, params...)
	if err != nil {
		return 0, err
	}
	r.prefixes = append(r.prefixes, p)
	return 0, r.fail
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
