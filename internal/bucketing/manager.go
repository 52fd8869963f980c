package bucketing

import (
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"radius-admin/internal/config"
)

// Manager assigns stable hash buckets to identifiers. Event buckets
// spread audit rows and rate-limit keys across partitions; date buckets
// name per-day search indices.
type Manager struct {
	eventBuckets int
	hasherPool   sync.Pool
}

func NewManager(cfg *config.Config) *Manager {
	buckets := cfg.Bucketing.EventBuckets
	if buckets < 1 {
		buckets = 1
	}
	return &Manager{
		eventBuckets: buckets,
		hasherPool: sync.Pool{
			New: func() interface{} {
				return murmur3.New32()
			},
		},
	}
}

// EventBucket maps an identifier to a bucket in [0, eventBuckets).
// The same identifier always lands in the same bucket.
func (m *Manager) EventBucket(identifier string) int {
	hasher := m.hasherPool.Get().(hash.Hash32)
	defer m.hasherPool.Put(hasher)

	hasher.Reset()
	hasher.Write([]byte(identifier))
	return int(hasher.Sum32() % uint32(m.eventBuckets))
}

// DateBucket returns today's UTC date in YYYY-MM-DD form, used as the
// suffix of daily audit search indices.
func (m *Manager) DateBucket() string {
	return time.Now().UTC().Format("2006-01-02")
}
