package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type failingCounterStore struct{}

func (failingCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func newTestLimiter(max int) (*Limiter, *time.Time) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &now

	store := NewMemoryCounterStore()
	store.now = func() time.Time { return *clock }

	return NewLimiter(store, time.Minute, max), clock
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(10)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if !l.Allow(ctx, "ip:192.0.2.10") {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	if l.Allow(ctx, "ip:192.0.2.10") {
		t.Fatal("attempt 11 should be denied")
	}
}

func TestWindowReset(t *testing.T) {
	l, clock := newTestLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Allow(ctx, "user:alice")
	}
	if l.Allow(ctx, "user:alice") {
		t.Fatal("attempt over limit should be denied")
	}

	// Once the window lapses, the stale counter self-heals.
	*clock = clock.Add(61 * time.Second)
	if !l.Allow(ctx, "user:alice") {
		t.Fatal("first attempt of a fresh window should be allowed")
	}
}

func TestIdentifiersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(2)
	ctx := context.Background()

	l.Allow(ctx, "ip:192.0.2.10")
	l.Allow(ctx, "ip:192.0.2.10")
	if l.Allow(ctx, "ip:192.0.2.10") {
		t.Fatal("third attempt for the same identifier should be denied")
	}
	if !l.Allow(ctx, "ip:192.0.2.99") {
		t.Fatal("a different identifier must not share the counter")
	}
}

func TestConcurrentAttemptsDoNotUndercount(t *testing.T) {
	l, _ := newTestLimiter(10)
	ctx := context.Background()

	const attempts = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "ip:192.0.2.10") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Fatalf("allowed = %d, want exactly 10", allowed)
	}
}

func TestFailsClosedOnStoreError(t *testing.T) {
	l := NewLimiter(failingCounterStore{}, time.Minute, 10)

	if l.Allow(context.Background(), "ip:192.0.2.10") {
		t.Fatal("limiter must deny when the counter store is unreachable")
	}
}
