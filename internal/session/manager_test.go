package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"radius-admin/internal/models"
)

type failingStore struct{}

func (failingStore) Get(ctx context.Context, id string) (*models.AdminSession, error) {
	return nil, errors.New("store down")
}
func (failingStore) Save(ctx context.Context, sess *models.AdminSession, ttl time.Duration) error {
	return errors.New("store down")
}
func (failingStore) Delete(ctx context.Context, id string) error {
	return errors.New("store down")
}

func newTestManager(t *testing.T, idle time.Duration) (*Manager, *MemoryStore, *time.Time) {
	t.Helper()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &now

	store := NewMemoryStore()
	store.now = func() time.Time { return *clock }

	m := NewManager(store, idle)
	m.now = func() time.Time { return *clock }

	return m, store, clock
}

func TestCreateIssuesDistinctTokens(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)

	sess, err := m.Create(context.Background(), "alice", "192.0.2.10")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" || sess.CSRFToken == "" {
		t.Fatal("expected non-empty session ID and CSRF token")
	}
	if sess.ID == sess.CSRFToken {
		t.Fatal("session ID and CSRF token must differ")
	}
	if len(sess.ID) < 40 {
		t.Fatalf("session ID too short for 256-bit entropy: %d chars", len(sess.ID))
	}
}

func TestValidateUnknownID(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)

	if _, err := m.Validate(context.Background(), "no-such-session"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := m.Validate(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty ID, got %v", err)
	}
}

func TestSlidingExpiration(t *testing.T) {
	m, _, clock := newTestManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, "alice", "192.0.2.10")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Activity just inside the window refreshes the clock.
	*clock = clock.Add(3599 * time.Second)
	if _, err := m.Validate(ctx, sess.ID); err != nil {
		t.Fatalf("session should be valid at 3599s: %v", err)
	}

	// Another 3599s from the refresh is still inside the new window.
	*clock = clock.Add(3599 * time.Second)
	if _, err := m.Validate(ctx, sess.ID); err != nil {
		t.Fatalf("session should be valid after refresh: %v", err)
	}

	// Now go idle past the timeout.
	*clock = clock.Add(3601 * time.Second)
	if _, err := m.Validate(ctx, sess.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after idle expiry, got %v", err)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, "alice", "192.0.2.10")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("first Destroy: %v", err)
	}
	if err := m.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("second Destroy should succeed: %v", err)
	}
	if err := m.Destroy(ctx, "never-existed"); err != nil {
		t.Fatalf("Destroy of unknown session should succeed: %v", err)
	}

	if _, err := m.Validate(ctx, sess.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("destroyed session must not validate, got %v", err)
	}
}

func TestCheckAntiForgery(t *testing.T) {
	m, _, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, "alice", "192.0.2.10")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	other, err := m.Create(ctx, "bob", "192.0.2.11")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		name      string
		sess      *models.AdminSession
		submitted string
		want      bool
	}{
		{"matching token", sess, sess.CSRFToken, true},
		{"empty token", sess, "", false},
		{"wrong token", sess, "bogus", false},
		{"token from another session", sess, other.CSRFToken, false},
		{"nil session", nil, sess.CSRFToken, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.CheckAntiForgery(tc.sess, tc.submitted); got != tc.want {
				t.Fatalf("CheckAntiForgery = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidateFailsClosedOnStoreError(t *testing.T) {
	m := NewManager(failingStore{}, time.Hour)

	if _, err := m.Validate(context.Background(), "some-id"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated when store is down, got %v", err)
	}
}

func TestSetIdleTimeout(t *testing.T) {
	m, _, clock := newTestManager(t, time.Hour)
	ctx := context.Background()

	m.SetIdleTimeout(10 * time.Minute)
	if got := m.IdleTimeout(); got != 10*time.Minute {
		t.Fatalf("IdleTimeout = %v, want 10m", got)
	}

	// Zero and negative values are ignored.
	m.SetIdleTimeout(0)
	if got := m.IdleTimeout(); got != 10*time.Minute {
		t.Fatalf("IdleTimeout after SetIdleTimeout(0) = %v, want 10m", got)
	}

	sess, err := m.Create(ctx, "alice", "192.0.2.10")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	*clock = clock.Add(11 * time.Minute)
	if _, err := m.Validate(ctx, sess.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected expiry under shortened timeout, got %v", err)
	}
}
