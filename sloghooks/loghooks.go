// Package sloghooks reports hubcache hook events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/hubcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery     uint64
	PrefixRemoveEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	prefixCtr   atomic.Uint64
}

var _ hubcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHealSingle(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("hubcache.self_heal_single",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("hubcache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("hubcache.gen_snapshot_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("hubcache.gen_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("hubcache.invalidate_outage",
		"key", h.redact(key),
		"bump_err", bumpErr,
		"del_err", delErr)
}

// PrefixRemoved logs prefixes in clear text; they carry templates and ids, not values.
func (h *Hooks) PrefixRemoved(prefix string, removed int) {
	if h.l == nil || !sample(h.opts.PrefixRemoveEvery, &h.prefixCtr) {
		return
	}
	h.l.Debug("hubcache.prefix_removed",
		"prefix", prefix,
		"removed", removed)
}

func (h *Hooks) InvalidationFailed(entity string, ev hubcache.EventType, target string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("hubcache.invalidation_failed",
		"entity", entity,
		"event", ev.String(),
		"target", target,
		"err", err)
}

func (h *Hooks) ActorMissing(entity string, ev hubcache.EventType) {
	if h.l == nil {
		return
	}
	h.l.Warn("hubcache.actor_missing",
		"entity", entity,
		"event", ev.String())
}
