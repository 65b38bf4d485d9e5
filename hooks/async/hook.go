// Package asynchook moves hook calls off the invalidation path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	m, _ := hubcache.NewManager(hubcache.Options{
//	    Namespace: "hub",
//	    Provider:  provider,
//	    Hooks:     hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/hubcache"
)

type Hooks struct {
	inner   hubcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ hubcache.Hooks = (*Hooks)(nil)

func New(inner hubcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue. Calls after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded on a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		if recover() != nil { // send on closed queue
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) SelfHealSingle(k, r string)           { h.try(func() { h.inner.SelfHealSingle(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)         { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) GenSnapshotError(k string, err error) { h.try(func() { h.inner.GenSnapshotError(k, err) }) }
func (h *Hooks) GenBumpError(k string, err error)     { h.try(func() { h.inner.GenBumpError(k, err) }) }
func (h *Hooks) PrefixRemoved(p string, n int)        { h.try(func() { h.inner.PrefixRemoved(p, n) }) }
func (h *Hooks) InvalidateOutage(k string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(k, be, de) })
}
func (h *Hooks) InvalidationFailed(entity string, ev hubcache.EventType, target string, err error) {
	h.try(func() { h.inner.InvalidationFailed(entity, ev, target, err) })
}
func (h *Hooks) ActorMissing(entity string, ev hubcache.EventType) {
	h.try(func() { h.inner.ActorMissing(entity, ev) })
}
