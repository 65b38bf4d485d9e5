package hubcache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run on the write path.
type Hooks interface {
	// A single entry was deleted on read.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SelfHealSingle(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed for one key (likely backend outage).
	InvalidateOutage(storageKey string, bumpErr, delErr error)

	// A prefix removal finished; removed is the number of storage keys dropped.
	PrefixRemoved(prefix string, removed int)

	// A consumer could not remove target for an entity event. The write that
	// raised the event is not affected.
	InvalidationFailed(entity string, ev EventType, target string, err error)

	// An actor-scoped removal was skipped (or redirected) because the event
	// carried no resolvable actor.
	ActorMissing(entity string, ev EventType)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHealSingle(string, string)                       {}
func (NopHooks) ProviderSetRejected(string)                          {}
func (NopHooks) GenSnapshotError(string, error)                      {}
func (NopHooks) GenBumpError(string, error)                          {}
func (NopHooks) InvalidateOutage(string, error, error)               {}
func (NopHooks) PrefixRemoved(string, int)                           {}
func (NopHooks) InvalidationFailed(string, EventType, string, error) {}
func (NopHooks) ActorMissing(string, EventType)                      {}
