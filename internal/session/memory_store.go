package session

import (
	"context"
	"sync"
	"time"

	"dataportal/domain/core"
	"dataportal/domain/dataset"
	"dataportal/internal"
	"dataportal/internal/metrics"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	dataset  *dataset.Dataset
	lastSeen time.Time
}

// MemoryStore keeps sessions in process memory. A session expires once it
// has been idle for longer than the TTL; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[core.SessionID]*entry
	ttl     time.Duration
	clock   clockwork.Clock
	logger  *internal.Logger
}

// NewMemoryStore creates a store. A nil clock uses the real clock.
func NewMemoryStore(ttl time.Duration, clock clockwork.Clock, logger *internal.Logger) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MemoryStore{
		entries: make(map[core.SessionID]*entry),
		ttl:     ttl,
		clock:   clock,
		logger:  logger,
	}
}

func (s *MemoryStore) Create(ctx context.Context) (core.SessionID, error) {
	id := core.NewSessionID()

	s.mu.Lock()
	s.entries[id] = &entry{lastSeen: s.clock.Now()}
	n := len(s.entries)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	s.logger.Debug("[SessionStore] created session %s", id)
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id core.SessionID) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	now := s.clock.Now()
	if s.expired(e, now) {
		delete(s.entries, id)
		return nil, core.ErrSessionNotFound
	}
	e.lastSeen = now
	if e.dataset == nil {
		return nil, core.ErrNoTable
	}
	return e.dataset, nil
}

func (s *MemoryStore) Put(ctx context.Context, id core.SessionID, ds *dataset.Dataset) error {
	s.mu.Lock()
	s.entries[id] = &entry{dataset: ds, lastSeen: s.clock.Now()}
	n := len(s.entries)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id core.SessionID) error {
	s.mu.Lock()
	delete(s.entries, id)
	n := len(s.entries)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired sessions and returns how many were removed
func (s *MemoryStore) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	if removed > 0 {
		metrics.SessionsExpiredTotal.Add(float64(removed))
		s.logger.Info("[SessionStore] expired %d idle sessions, %d remain", removed, n)
	}
	return removed
}

// Run sweeps on every interval until ctx is done
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

func (s *MemoryStore) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl
}
