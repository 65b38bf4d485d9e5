package hubcache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
)

// Invalidator is the removal surface consumers need. *Manager implements it.
type Invalidator interface {
	Remove(ctx context.Context, key CacheKey, params ...any) error
	RemoveByPrefix(ctx context.Context, prefix string, params ...any) (int, error)
}

var _ Invalidator = (*Manager)(nil)

// ConsumerFunc removes whatever an entity event made stale. It records failures
// on inv instead of returning them.
type ConsumerFunc func(ctx context.Context, inv *Invalidation, ev Event)

// MissingActorPolicy decides what actor-scoped removals do when an event has no actor.
type MissingActorPolicy uint8

const (
	// SkipScoped skips actor-scoped removals and logs a warning.
	SkipScoped MissingActorPolicy = iota
	// ZeroBucket scopes them to user/device/language 0, matching consumers
	// written before actors were passed explicitly.
	ZeroBucket
)

type DispatcherOptions struct {
	Resolver     ActorResolver // nil => events keep whatever Actor they carry
	MissingActor MissingActorPolicy
	Logger       Logger // nil => NopLogger
	Hooks        Hooks  // nil => NopHooks
}

// Dispatcher routes entity events to the consumers registered for the entity.
// Register everything at startup; Publish is safe for concurrent use.
type Dispatcher struct {
	inv      Invalidator
	resolver ActorResolver
	policy   MissingActorPolicy
	log      Logger
	hooks    Hooks

	mu        sync.RWMutex
	consumers map[string][]ConsumerFunc
}

func NewDispatcher(inv Invalidator, opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		inv:       inv,
		resolver:  opts.Resolver,
		policy:    opts.MissingActor,
		log:       coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:     coalesce[Hooks](opts.Hooks, NopHooks{}),
		consumers: make(map[string][]ConsumerFunc),
	}
}

// Register appends consumers for an entity name (case-insensitive).
func (d *Dispatcher) Register(entity string, fns ...ConsumerFunc) {
	entity = strings.ToLower(entity)
	d.mu.Lock()
	d.consumers[entity] = append(d.consumers[entity], fns...)
	d.mu.Unlock()
}

func (d *Dispatcher) Registered(entity string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.consumers[strings.ToLower(entity)]) > 0
}

// Publish runs every consumer of ev's entity before returning, so a read
// issued after Publish returns cannot see the removed keys. Removal failures
// are logged, reported to Hooks and returned in the Result; they must not fail
// the write that raised the event.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) Result {
	if ev.EntityName == "" && ev.Entity != nil {
		ev.EntityName = entityName(ev.Entity)
	}
	ev.EntityName = strings.ToLower(ev.EntityName)

	d.mu.RLock()
	fns := d.consumers[ev.EntityName]
	d.mu.RUnlock()
	if len(fns) == 0 {
		d.log.Debug("no cache consumers for entity", Fields{"entity": ev.EntityName, "event": ev.Type.String()})
		return Result{}
	}

	if ev.Actor == nil && d.resolver != nil {
		a, err := d.resolver.CurrentActor(ctx)
		if err != nil {
			d.log.Warn("actor resolution failed", Fields{"entity": ev.EntityName, "event": ev.Type.String(), "err": err})
		} else {
			ev.Actor = a
		}
	}

	inv := &Invalidation{
		inv:    d.inv,
		ev:     ev,
		log:    d.log,
		hooks:  d.hooks,
		policy: d.policy,
	}
	for _, fn := range fns {
		fn(ctx, inv, ev)
	}
	return Result{Failed: inv.errs, ActorMissing: inv.actorMissing}
}

func (d *Dispatcher) PublishInsert(ctx context.Context, e Entity) Result {
	return d.Publish(ctx, NewEvent(Insert, e, nil))
}

func (d *Dispatcher) PublishUpdate(ctx context.Context, e Entity) Result {
	return d.Publish(ctx, NewEvent(Update, e, nil))
}

func (d *Dispatcher) PublishDelete(ctx context.Context, e Entity) Result {
	return d.Publish(ctx, NewEvent(Delete, e, nil))
}

// Result summarizes one Publish.
type Result struct {
	Failed       []error // *InvalidationError values
	ActorMissing bool
}

func (r Result) Err() error { return errors.Join(r.Failed...) }

// NewEvent builds an event named after the entity's Go type.
func NewEvent(t EventType, e Entity, actor *Actor) Event {
	return Event{Type: t, EntityName: entityName(e), Entity: e, Actor: actor}
}

func entityName(e Entity) string {
	if e == nil {
		return ""
	}
	t := reflect.TypeOf(e)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

// Invalidation is handed to consumers for one event. It collects failures so a
// consumer always runs every removal it lists.
type Invalidation struct {
	inv    Invalidator
	ev     Event
	log    Logger
	hooks  Hooks
	policy MissingActorPolicy

	actorMissing bool
	errs         []error
}

func (i *Invalidation) Event() Event { return i.ev }

// Remove prepares key with params and removes it.
func (i *Invalidation) Remove(ctx context.Context, key CacheKey, params ...any) {
	if err := i.inv.Remove(ctx, key, params...); err != nil {
		i.fail(key.Key, err)
	}
}

// RemoveByPrefix prepares prefix with params and removes every key under it.
func (i *Invalidation) RemoveByPrefix(ctx context.Context, prefix string, params ...any) {
	if _, err := i.inv.RemoveByPrefix(ctx, prefix, params...); err != nil {
		i.fail(prefix, err)
	}
}

// Actor returns the acting user/device. With no actor on the event it applies
// the dispatcher's MissingActorPolicy: ok=false means skip the scoped removal.
func (i *Invalidation) Actor() (*Actor, bool) {
	if i.ev.Actor != nil {
		return i.ev.Actor, true
	}
	if !i.actorMissing {
		i.actorMissing = true
		i.hooks.ActorMissing(i.ev.EntityName, i.ev.Type)
		i.log.Warn("no actor for actor-scoped invalidation", Fields{
			"entity": i.ev.EntityName,
			"event":  i.ev.Type.String(),
			"policy": i.policy.String(),
		})
	}
	if i.policy == ZeroBucket {
		return &Actor{}, true
	}
	return nil, false
}

// Err joins every failure recorded so far.
func (i *Invalidation) Err() error { return errors.Join(i.errs...) }

func (i *Invalidation) fail(target string, err error) {
	ie := &InvalidationError{Entity: i.ev.EntityName, Event: i.ev.Type, Target: target, Err: err}
	i.errs = append(i.errs, ie)
	i.hooks.InvalidationFailed(i.ev.EntityName, i.ev.Type, target, err)
	i.log.Error("cache invalidation failed", Fields{
		"entity": i.ev.EntityName,
		"event":  i.ev.Type.String(),
		"target": target,
		"err":    err,
	})
}

func (p MissingActorPolicy) String() string {
	if p == ZeroBucket {
		return "zero_bucket"
	}
	return "skip"
}

// ClearEntityCache is the removal every entity gets: the batch, all and
// dynamic-filter groups always, the by-id entry on update and delete. On insert
// nothing can be cached under the new id yet.
func ClearEntityCache(ctx context.Context, inv *Invalidation, keys EntityKeys, ev Event) {
	inv.RemoveByPrefix(ctx, keys.ByIDsPrefix)
	inv.RemoveByPrefix(ctx, keys.AllPrefix)
	inv.RemoveByPrefix(ctx, keys.ByDynamicFilterPrefix)
	if ev.Type != Insert {
		inv.Remove(ctx, keys.ByID, ev.Entity)
	}
}

// ClearEntity wraps ClearEntityCache as a ConsumerFunc for entities with no
// extra fan-out.
func ClearEntity(keys EntityKeys) ConsumerFunc {
	return func(ctx context.Context, inv *Invalidation, ev Event) {
		ClearEntityCache(ctx, inv, keys, ev)
	}
}

// RemoveByID removes the by-id entry on every event, inserts included.
func RemoveByID(keys EntityKeys) ConsumerFunc {
	return func(ctx context.Context, inv *Invalidation, ev Event) {
		inv.Remove(ctx, keys.ByID, ev.Entity)
	}
}
