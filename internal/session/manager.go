package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"radius-admin/internal/models"
	"radius-admin/internal/util"
)

// ErrUnauthenticated covers every failed validation: missing, unknown or
// expired sessions, and unreachable stores. Callers get no finer detail.
var ErrUnauthenticated = errors.New("unauthenticated")

// tokenBytes gives 256 bits of entropy for session IDs and CSRF tokens.
const tokenBytes = 32

// Manager owns the admin session lifecycle: creation on login,
// sliding-expiration validation on every request, destruction on logout.
type Manager struct {
	store Store

	mu          sync.RWMutex
	idleTimeout time.Duration

	now func() time.Time
}

func NewManager(store Store, idleTimeout time.Duration) *Manager {
	return &Manager{
		store:       store,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// IdleTimeout returns the current sliding-expiration window.
func (m *Manager) IdleTimeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idleTimeout
}

// SetIdleTimeout applies a new idle timeout to sessions validated from
// now on. Settings updates call this at runtime.
func (m *Manager) SetIdleTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.idleTimeout = d
	m.mu.Unlock()
}

// Create issues a fresh authenticated session for username. Both the
// session ID and the anti-forgery token are generated here and never
// rotated for the session's lifetime.
func (m *Manager) Create(ctx context.Context, username, clientIP string) (*models.AdminSession, error) {
	id, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	csrf, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate anti-forgery token: %w", err)
	}

	now := m.now().UTC()
	sess := &models.AdminSession{
		ID:         id,
		Username:   username,
		CSRFToken:  csrf,
		ClientIP:   clientIP,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	if err := m.store.Save(ctx, sess, m.IdleTimeout()); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	util.Debug("Session created",
		zap.String("username", username),
		zap.String("client_ip", clientIP))

	return sess, nil
}

// Validate resolves a session ID to its session, refreshing the idle
// clock (sliding expiration). Any store failure is treated as
// unauthenticated: the session layer fails closed.
func (m *Manager) Validate(ctx context.Context, id string) (*models.AdminSession, error) {
	if id == "" {
		return nil, ErrUnauthenticated
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			util.Error("Session store unavailable, failing closed", zap.Error(err))
		}
		return nil, ErrUnauthenticated
	}

	now := m.now().UTC()
	timeout := m.IdleTimeout()
	if now.Sub(sess.LastSeenAt) > timeout {
		// Expired; drop the stale entry on the way out.
		_ = m.store.Delete(ctx, id)
		return nil, ErrUnauthenticated
	}

	sess.LastSeenAt = now
	if err := m.store.Save(ctx, sess, timeout); err != nil {
		util.Error("Failed to refresh session, failing closed", zap.Error(err))
		return nil, ErrUnauthenticated
	}

	return sess, nil
}

// Destroy removes a session immediately. Destroying an unknown or
// already-destroyed session is a no-op.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// CheckAntiForgery compares a submitted token against the session's
// anti-forgery token in constant time. Empty submissions always fail.
func (m *Manager) CheckAntiForgery(sess *models.AdminSession, submitted string) bool {
	if sess == nil || sess.CSRFToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(submitted)) == 1
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
