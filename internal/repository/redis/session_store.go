package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"radius-admin/internal/client"
	"radius-admin/internal/models"
	"radius-admin/internal/session"
)

const sessionPrefix = "admin_session:"

// SessionStore keeps admin sessions in Redis so every panel instance
// sees the same sessions. The key TTL mirrors the idle timeout; Redis
// evicts what the manager would reject anyway.
type SessionStore struct {
	client *client.RedisClient
}

func NewSessionStore(redisClient *client.RedisClient) *SessionStore {
	return &SessionStore{client: redisClient}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*models.AdminSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, sessionPrefix+id)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess models.AdminSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *models.AdminSession, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionPrefix+sess.ID, data, ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Del(ctx, sessionPrefix+id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
