package session

import (
	"context"
	"errors"
	"time"

	"radius-admin/internal/models"
)

// ErrNotFound is returned by a Store when no live session exists for the
// given ID.
var ErrNotFound = errors.New("session not found")

// Store persists admin sessions. Implementations must be safe for
// concurrent use; the in-memory store serves tests and single-instance
// deployments, the Redis store serves multi-instance ones.
type Store interface {
	Get(ctx context.Context, id string) (*models.AdminSession, error)
	Save(ctx context.Context, sess *models.AdminSession, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
