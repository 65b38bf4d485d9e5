// Package promhooks counts hubcache hook events as Prometheus metrics.
//
// Counters live under the "hubcache" namespace:
//   - self_heal_total{reason}
//   - provider_set_rejected_total
//   - gen_errors_total{op}              op: snapshot | bump
//   - invalidate_outage_total
//   - prefix_removals_total, prefix_removed_keys_total
//   - invalidation_failures_total{entity,event}
//   - actor_missing_total{entity,event}
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/unkn0wn-root/hubcache"
)

const namespace = "hubcache"

type Hooks struct {
	selfHeal       *prometheus.CounterVec
	setRejected    prometheus.Counter
	genErrors      *prometheus.CounterVec
	outages        prometheus.Counter
	prefixRemovals prometheus.Counter
	prefixKeys     prometheus.Counter
	invFailures    *prometheus.CounterVec
	actorMissing   *prometheus.CounterVec
}

var _ hubcache.Hooks = (*Hooks)(nil)

// New registers the counters with reg (nil => prometheus.DefaultRegisterer).
// Registering twice with the same registry panics.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		selfHeal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "self_heal_total",
			Help:      "Entries deleted on read because they were corrupt or stale.",
		}, []string{"reason"}),
		setRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_set_rejected_total",
			Help:      "Writes the provider declined to store.",
		}),
		genErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gen_errors_total",
			Help:      "Generation store errors by operation.",
		}, []string{"op"}),
		outages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalidate_outage_total",
			Help:      "Removals where both the generation bump and the delete failed.",
		}),
		prefixRemovals: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefix_removals_total",
			Help:      "Completed prefix removals.",
		}),
		prefixKeys: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefix_removed_keys_total",
			Help:      "Storage keys dropped by prefix removals.",
		}),
		invFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalidation_failures_total",
			Help:      "Consumer removals that failed, by entity and event.",
		}, []string{"entity", "event"}),
		actorMissing: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_missing_total",
			Help:      "Events whose actor-scoped removals had no actor.",
		}, []string{"entity", "event"}),
	}
}

func (h *Hooks) SelfHealSingle(_, reason string)       { h.selfHeal.WithLabelValues(reason).Inc() }
func (h *Hooks) ProviderSetRejected(string)            { h.setRejected.Inc() }
func (h *Hooks) GenSnapshotError(string, error)        { h.genErrors.WithLabelValues("snapshot").Inc() }
func (h *Hooks) GenBumpError(string, error)            { h.genErrors.WithLabelValues("bump").Inc() }
func (h *Hooks) InvalidateOutage(string, error, error) { h.outages.Inc() }

func (h *Hooks) PrefixRemoved(_ string, removed int) {
	h.prefixRemovals.Inc()
	h.prefixKeys.Add(float64(removed))
}

func (h *Hooks) InvalidationFailed(entity string, ev hubcache.EventType, _ string, _ error) {
	h.invFailures.WithLabelValues(entity, ev.String()).Inc()
}

func (h *Hooks) ActorMissing(entity string, ev hubcache.EventType) {
	h.actorMissing.WithLabelValues(entity, ev.String()).Inc()
}
