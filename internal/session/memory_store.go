package session

import (
	"context"
	"sync"
	"time"

	"radius-admin/internal/models"
)

type memoryEntry struct {
	sess      models.AdminSession
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Expired entries
// self-heal on access.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.AdminSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}

	sess := entry.sess
	return &sess, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *models.AdminSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = memoryEntry{
		sess:      *sess,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
