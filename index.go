package hubcache

import (
	"strings"
	"sync"
)

// keyIndex remembers storage keys this process wrote, for providers that
// cannot enumerate keys themselves.
type keyIndex struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newKeyIndex() *keyIndex { return &keyIndex{keys: make(map[string]struct{})} }

func (x *keyIndex) add(k string) {
	x.mu.Lock()
	x.keys[k] = struct{}{}
	x.mu.Unlock()
}

func (x *keyIndex) remove(keys ...string) {
	x.mu.Lock()
	for _, k := range keys {
		delete(x.keys, k)
	}
	x.mu.Unlock()
}

func (x *keyIndex) match(prefix string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	var out []string
	for k := range x.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

func (x *keyIndex) len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.keys)
}
