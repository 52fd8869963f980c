package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"radius-admin/internal/audit"
	"radius-admin/internal/bucketing"
	"radius-admin/internal/config"
	"radius-admin/internal/hashing"
	"radius-admin/internal/models"
	"radius-admin/internal/ratelimit"
	"radius-admin/internal/repository/postgres"
	"radius-admin/internal/session"
)

type fakeAdminStore struct {
	admin   *models.AdminUser
	lookups int
}

func (s *fakeAdminStore) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	s.lookups++
	if s.admin == nil || s.admin.Username != username {
		return nil, postgres.ErrAdminNotFound
	}
	return s.admin, nil
}

func (s *fakeAdminStore) UpdateLastLogin(ctx context.Context, username, clientIP string) error {
	return nil
}

type memorySink struct {
	records []*models.AuditRecord
}

func (s *memorySink) Name() string { return "memory" }

func (s *memorySink) Write(ctx context.Context, rec *models.AuditRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *memorySink) actions() []models.AuditAction {
	out := make([]models.AuditAction, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Action)
	}
	return out
}

type authFixture struct {
	service *AuthService
	admins  *fakeAdminStore
	sink    *memorySink
}

func newAuthFixture(t *testing.T, maxAttempts int) *authFixture {
	t.Helper()

	cfg := &config.Config{
		Environment: "development",
		Hashing: config.HashingConfig{
			Argon2MemoryCost:  8 * 1024,
			Argon2TimeCost:    1,
			Argon2Parallelism: 1,
			Pepper:            "test-pepper",
		},
		Bucketing: config.BucketingConfig{EventBuckets: 16},
	}

	hasher, err := hashing.NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	result, err := hasher.HashPassword("Adm1n$ecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	admins := &fakeAdminStore{
		admin: &models.AdminUser{
			Username:      "alice",
			PasswordHash:  result.Hash,
			PasswordSalt:  result.Salt,
			PepperVersion: result.PepperVersion,
			Algorithm:     result.Algorithm,
			CreatedAt:     time.Now().UTC(),
		},
	}

	sink := &memorySink{}
	recorder := audit.NewRecorder(bucketing.NewManager(cfg), sink)
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryCounterStore(), time.Minute, maxAttempts)

	return &authFixture{
		service: NewAuthService(admins, hasher, sessions, limiter, recorder, nil),
		admins:  admins,
		sink:    sink,
	}
}

func TestLoginSuccess(t *testing.T) {
	fx := newAuthFixture(t, 10)

	sess, err := fx.service.Login(context.Background(), "alice", "Adm1n$ecret", "192.0.2.10")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Username != "alice" {
		t.Fatalf("session username = %q, want alice", sess.Username)
	}
	if sess.CSRFToken == "" {
		t.Fatal("session must carry an anti-forgery token")
	}

	actions := fx.sink.actions()
	if len(actions) != 1 || actions[0] != models.ActionLoginSuccess {
		t.Fatalf("audit actions = %v, want [login_success]", actions)
	}
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	fx := newAuthFixture(t, 100)
	ctx := context.Background()

	_, errWrong := fx.service.Login(ctx, "alice", "not-the-password", "192.0.2.10")
	_, errUnknown := fx.service.Login(ctx, "mallory", "whatever", "192.0.2.10")

	if !errors.Is(errWrong, ErrAuthenticationFailed) {
		t.Fatalf("wrong password: got %v", errWrong)
	}
	if !errors.Is(errUnknown, ErrAuthenticationFailed) {
		t.Fatalf("unknown user: got %v", errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatal("failure modes must be indistinguishable to the caller")
	}

	for _, rec := range fx.sink.records {
		if rec.Action != models.ActionLoginFailure {
			t.Fatalf("unexpected audit action %s", rec.Action)
		}
	}
}

func TestLoginRateLimitShieldsCredentialStore(t *testing.T) {
	fx := newAuthFixture(t, 10)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if _, err := fx.service.Login(ctx, "alice", "wrong", "192.0.2.10"); !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("attempt %d: got %v, want ErrAuthenticationFailed", i, err)
		}
	}

	_, err := fx.service.Login(ctx, "alice", "wrong", "192.0.2.10")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("attempt 11: got %v, want ErrRateLimited", err)
	}

	// The limited attempt must never have reached the credential store.
	if fx.admins.lookups != 10 {
		t.Fatalf("admin lookups = %d, want 10", fx.admins.lookups)
	}

	last := fx.sink.records[len(fx.sink.records)-1]
	if last.Action != models.ActionRateLimitExceeded {
		t.Fatalf("last audit action = %s, want rate_limit_exceeded", last.Action)
	}

	// Even the right password is refused while limited.
	if _, err := fx.service.Login(ctx, "alice", "Adm1n$ecret", "192.0.2.10"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("correct password while limited: got %v, want ErrRateLimited", err)
	}
}

func TestLoginRateLimitTracksUsernameAcrossIPs(t *testing.T) {
	fx := newAuthFixture(t, 3)
	ctx := context.Background()

	// Same account from rotating IPs still trips the per-account counter.
	ips := []string{"192.0.2.1", "192.0.2.2", "192.0.2.3", "192.0.2.4"}
	var lastErr error
	for _, ip := range ips {
		_, lastErr = fx.service.Login(ctx, "alice", "wrong", ip)
	}
	if !errors.Is(lastErr, ErrRateLimited) {
		t.Fatalf("4th attempt across IPs: got %v, want ErrRateLimited", lastErr)
	}
}

func TestLogoutRecordsAudit(t *testing.T) {
	fx := newAuthFixture(t, 10)
	ctx := context.Background()

	sess, err := fx.service.Login(ctx, "alice", "Adm1n$ecret", "192.0.2.10")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := fx.service.Logout(ctx, sess.ID, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// Logging out twice still succeeds.
	if err := fx.service.Logout(ctx, sess.ID, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("second Logout: %v", err)
	}

	actions := fx.sink.actions()
	if actions[len(actions)-1] != models.ActionLogout {
		t.Fatalf("last audit action = %s, want logout", actions[len(actions)-1])
	}
}
