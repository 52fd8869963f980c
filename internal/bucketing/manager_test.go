package bucketing

import (
	"testing"

	"radius-admin/internal/config"
)

func newManager(eventBuckets int) *Manager {
	return NewManager(&config.Config{
		Bucketing: config.BucketingConfig{EventBuckets: eventBuckets},
	})
}

func TestEventBucketStable(t *testing.T) {
	m := newManager(16)

	first := m.EventBucket("jdoe")
	for i := 0; i < 100; i++ {
		if got := m.EventBucket("jdoe"); got != first {
			t.Fatalf("bucket changed between calls: %d then %d", first, got)
		}
	}
	if first < 0 || first >= 16 {
		t.Fatalf("bucket %d outside [0, 16)", first)
	}
}

func TestEventBucketZeroConfig(t *testing.T) {
	for _, buckets := range []int{0, -4} {
		m := newManager(buckets)
		if got := m.EventBucket("jdoe"); got != 0 {
			t.Fatalf("EventBuckets=%d: bucket = %d, want 0", buckets, got)
		}
	}
}

func TestDateBucketFormat(t *testing.T) {
	m := newManager(16)
	if got := m.DateBucket(); len(got) != 10 || got[4] != '-' || got[7] != '-' {
		t.Fatalf("DateBucket() = %q, want YYYY-MM-DD", got)
	}
}
