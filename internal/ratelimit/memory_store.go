package ratelimit

import (
	"context"
	"sync"
	"time"

	"radius-admin/internal/models"
)

// MemoryCounterStore is the in-process CounterStore. Counters live in a
// map guarded by a single mutex; increment plus window check happen
// under the lock, so concurrent attempts cannot undercount.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*models.RateWindow
	now     func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		windows: make(map[string]*models.RateWindow),
		now:     time.Now,
	}
}

func (s *MemoryCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.Sub(w.WindowStart) > window {
		// First attempt of a fresh window, or the previous window went
		// stale; either way the count restarts at 1.
		w = &models.RateWindow{
			Identifier:  key,
			WindowStart: now,
			Attempts:    1,
		}
		s.windows[key] = w
		return 1, nil
	}

	w.Attempts++
	return w.Attempts, nil
}
