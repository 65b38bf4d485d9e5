package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/hubcache"
)

type recorder struct {
	hubcache.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) add(s string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) PrefixRemoved(p string, _ int) { r.add("prefix:" + p) }
func (r *recorder) InvalidationFailed(entity string, _ hubcache.EventType, _ string, _ error) {
	r.add("failed:" + entity)
}

func TestForwardsAndDrainsOnClose(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 2, 16)
	h.PrefixRemoved("App.sensor.", 3)
	h.InvalidationFailed("sensor", hubcache.Delete, "App.sensor.all.", errors.New("x"))
	h.Close()

	if len(rec.events) != 2 {
		t.Fatalf("events=%v", rec.events)
	}
	h.PrefixRemoved("after-close", 0) // must not panic
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

func TestDropsOnFullQueue(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	h := New(rec, 1, 1)
	for i := 0; i < 10; i++ {
		h.ActorMissing("monitor", hubcache.Update)
		h.PrefixRemoved("p", 0)
	}
	close(rec.block)
	h.Close()
	if h.Dropped() == 0 {
		t.Fatalf("expected drops with a blocked worker and queue of 1")
	}
}
