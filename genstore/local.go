package genstore

import (
	"context"
	"sync"
	"time"
)

type localGenEntry struct {
	Gen       uint64
	UpdatedAt time.Time
}

// LocalGenStore keeps generations in-process (default).
// A cleanup loop prunes entries not bumped within retention.
type LocalGenStore struct {
	mu   sync.RWMutex
	gens map[string]localGenEntry

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ GenStore = (*LocalGenStore)(nil)

// NewLocalGenStore starts the cleanup loop when both durations are positive.
func NewLocalGenStore(cleanupInterval, retention time.Duration) *LocalGenStore {
	s := &LocalGenStore{gens: make(map[string]localGenEntry)}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *LocalGenStore) Snapshot(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	e := s.gens[k]
	s.mu.RUnlock()
	return e.Gen, nil
}

func (s *LocalGenStore) Bump(_ context.Context, k string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	e := s.bumpLocked(k, now)
	s.mu.Unlock()
	return e.Gen, nil
}

// BumpMany takes the write lock once for the whole batch.
func (s *LocalGenStore) BumpMany(_ context.Context, ks []string) error {
	now := time.Now()
	s.mu.Lock()
	for _, k := range ks {
		s.bumpLocked(k, now)
	}
	s.mu.Unlock()
	return nil
}

func (s *LocalGenStore) bumpLocked(k string, now time.Time) localGenEntry {
	e := s.gens[k]
	e.Gen++
	e.UpdatedAt = now
	s.gens[k] = e
	return e
}

// Cleanup drops entries whose last bump is older than retention. A dropped key
// reads as generation 0 again; entries written under an older generation are
// gone from the provider by then because every bump is paired with a delete.
func (s *LocalGenStore) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.gens {
		if e.UpdatedAt.Before(cutoff) {
			delete(s.gens, k)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of tracked keys.
func (s *LocalGenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gens)
}

func (s *LocalGenStore) Close(_ context.Context) error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop()
			s.wg.Wait()
		}
	})
	return nil
}
