package hubcache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Application namespace tokens.
const (
	AppNamespace  = "App"  // hub
	DashNamespace = "Dash" // dashboard client
)

// EntityKeys holds every template an entity type can be cached under.
// Values are read-only after construction.
type EntityKeys struct {
	App            string
	EntityTypeName string

	// Prefix is shared by every key below.
	Prefix string

	ByID       CacheKey
	ByIDPrefix string // still carries {0}

	ByIDs       CacheKey // {0} is the ids hash
	ByIDsPrefix string

	All       CacheKey
	AllPrefix string

	ByDynamicFilter       CacheKey // {0} set index, {1} filter hash
	ByDynamicFilterPrefix string
}

// NewEntityKeys builds the templates for one entity type in one application namespace.
func NewEntityKeys(app, entityTypeName string) EntityKeys {
	name := strings.ToLower(entityTypeName)
	prefix := fmt.Sprintf("%s.%s.", app, name)

	k := EntityKeys{
		App:                   app,
		EntityTypeName:        name,
		Prefix:                prefix,
		ByIDPrefix:            prefix + "byid.{0}",
		ByIDsPrefix:           prefix + "byids.",
		AllPrefix:             prefix + "all.",
		ByDynamicFilterPrefix: prefix + "bydynamicfilter.",
	}
	k.ByID = NewCacheKey(prefix+"byid.{0}", k.ByIDPrefix, prefix)
	k.ByIDs = NewCacheKey(prefix+"byids.{0}", k.ByIDsPrefix, prefix)
	k.All = NewCacheKey(k.AllPrefix, k.AllPrefix, prefix)
	k.ByDynamicFilter = NewCacheKey(prefix+"bydynamicfilter.{0}.{1}", k.ByDynamicFilterPrefix, prefix)
	return k
}

// EntityTypeName returns the lower-cased simple type name of T (pointers are unwrapped).
func EntityTypeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

// KeysFor is NewEntityKeys with the name derived from T.
func KeysFor[T any](app string) EntityKeys {
	return NewEntityKeys(app, EntityTypeName[T]())
}

// KeyRegistry maps entity type names to their templates for one application
// namespace. Register everything at startup; lookups are safe concurrently.
type KeyRegistry struct {
	app string

	mu   sync.RWMutex
	keys map[string]EntityKeys
}

func NewKeyRegistry(app string, entityTypeNames ...string) *KeyRegistry {
	r := &KeyRegistry{app: app, keys: make(map[string]EntityKeys, len(entityTypeNames))}
	for _, n := range entityTypeNames {
		r.Register(n)
	}
	return r
}

func (r *KeyRegistry) App() string { return r.app }

// Register adds (or returns the existing) templates for name.
func (r *KeyRegistry) Register(name string) EntityKeys {
	name = strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.keys[name]; ok {
		return k
	}
	k := NewEntityKeys(r.app, name)
	r.keys[name] = k
	return k
}

func (r *KeyRegistry) Lookup(name string) (EntityKeys, bool) {
	r.mu.RLock()
	k, ok := r.keys[strings.ToLower(name)]
	r.mu.RUnlock()
	return k, ok
}

// MustLookup panics for unregistered names; use only with names registered at startup.
func (r *KeyRegistry) MustLookup(name string) EntityKeys {
	k, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("hubcache: entity %q not registered in %s registry", name, r.app))
	}
	return k
}

// Names returns registered entity names, sorted.
func (r *KeyRegistry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.keys))
	for n := range r.keys {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
