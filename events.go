package hubcache

import (
	"context"
	"fmt"
)

// EventType is the lifecycle transition an entity went through.
type EventType uint8

const (
	Insert EventType = iota + 1
	Update
	Delete
)

func (t EventType) String() string {
	switch t {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// ParseEventType accepts "insert", "update" and "delete".
func ParseEventType(s string) (EventType, error) {
	switch s {
	case "insert":
		return Insert, nil
	case "update":
		return Update, nil
	case "delete":
		return Delete, nil
	}
	return 0, fmt.Errorf("hubcache: unknown event type %q", s)
}

// Entity is anything persisted with a numeric identifier.
type Entity interface {
	EntityID() int64
}

// Actor is the user/device on whose behalf a change was made.
type Actor struct {
	UserID     int64
	DeviceID   int64
	LanguageID int64
}

// Event is one persisted change. Entity holds the post-change instance.
// Actor is nil for background or system-initiated writes.
type Event struct {
	Type       EventType
	EntityName string
	Entity     Entity
	Actor      *Actor
}

// ActorResolver looks up the acting user/device when an event was raised without one.
type ActorResolver interface {
	CurrentActor(ctx context.Context) (*Actor, error)
}

// ActorResolverFunc adapts a function to ActorResolver.
type ActorResolverFunc func(ctx context.Context) (*Actor, error)

func (f ActorResolverFunc) CurrentActor(ctx context.Context) (*Actor, error) { return f(ctx) }

type actorCtxKey struct{}

// WithActor stores a on ctx for ContextActorResolver.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, a)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(actorCtxKey{}).(*Actor)
	return a, ok && a != nil
}

// ContextActorResolver resolves the actor stored on the request context.
var ContextActorResolver ActorResolver = ActorResolverFunc(func(ctx context.Context) (*Actor, error) {
	a, _ := ActorFromContext(ctx)
	return a, nil
})
