package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"radius-admin/internal/audit"
	"radius-admin/internal/hashing"
	"radius-admin/internal/models"
	"radius-admin/internal/ratelimit"
	"radius-admin/internal/repository/postgres"
	"radius-admin/internal/session"
	"radius-admin/internal/util"
)

// AdminStore is the slice of the admin repository the auth flow needs.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, username, clientIP string) error
}

// SessionTimeoutSource resolves the runtime-configured idle timeout.
type SessionTimeoutSource interface {
	SessionTimeoutSeconds(ctx context.Context) int
}

// AuthService runs the login and logout flows. Ordering inside Login is
// the contract: the rate limiter is consulted before the credential
// store is ever touched, so a limited attacker cannot probe accounts or
// load the database.
type AuthService struct {
	admins   AdminStore
	hasher   *hashing.Hasher
	sessions *session.Manager
	limiter  *ratelimit.Limiter
	recorder *audit.Recorder
	timeouts SessionTimeoutSource
}

func NewAuthService(
	admins AdminStore,
	hasher *hashing.Hasher,
	sessions *session.Manager,
	limiter *ratelimit.Limiter,
	recorder *audit.Recorder,
	timeouts SessionTimeoutSource,
) *AuthService {
	return &AuthService{
		admins:   admins,
		hasher:   hasher,
		sessions: sessions,
		limiter:  limiter,
		recorder: recorder,
		timeouts: timeouts,
	}
}

// Login authenticates an admin and issues a session. Failures are
// deliberately indistinguishable to the caller: unknown account and
// wrong password both come back as ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, username, password, clientIP string) (*models.AdminSession, error) {
	username = util.SanitizeInput(username)

	// Rate gate first. Both the source IP and the target account are
	// counted; tripping either denies the attempt before any store
	// lookup happens.
	allowedIP := s.limiter.Allow(ctx, "ip:"+clientIP)
	allowedUser := s.limiter.Allow(ctx, "user:"+username)
	if !allowedIP || !allowedUser {
		s.recorder.Record(ctx, audit.Entry{
			Actor:    username,
			Action:   models.ActionRateLimitExceeded,
			Target:   username,
			ClientIP: clientIP,
			Status:   models.StatusFailure,
			Details:  "login attempt limit reached",
		})
		return nil, ErrRateLimited
	}

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidationFailed)
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, postgres.ErrAdminNotFound) {
			s.recordLoginFailure(ctx, username, clientIP, "unknown account")
			return nil, ErrAuthenticationFailed
		}
		util.Error("Admin lookup failed", zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	ok, err := s.hasher.VerifyPassword(password, &hashing.HashResult{
		Hash:          admin.PasswordHash,
		Salt:          admin.PasswordSalt,
		PepperVersion: admin.PepperVersion,
		Algorithm:     admin.Algorithm,
	})
	if err != nil {
		util.Error("Password verification failed", zap.String("username", username), zap.Error(err))
		s.recordLoginFailure(ctx, username, clientIP, "verification error")
		return nil, ErrAuthenticationFailed
	}
	if !ok {
		s.recordLoginFailure(ctx, username, clientIP, "wrong password")
		return nil, ErrAuthenticationFailed
	}

	if s.timeouts != nil {
		if secs := s.timeouts.SessionTimeoutSeconds(ctx); secs > 0 {
			s.sessions.SetIdleTimeout(time.Duration(secs) * time.Second)
		}
	}

	sess, err := s.sessions.Create(ctx, username, clientIP)
	if err != nil {
		util.Error("Session creation failed", zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	if err := s.admins.UpdateLastLogin(ctx, username, clientIP); err != nil {
		util.Warn("Failed to record last login", zap.String("username", username), zap.Error(err))
	}

	s.recorder.Record(ctx, audit.Entry{
		Actor:    username,
		Action:   models.ActionLoginSuccess,
		Target:   username,
		ClientIP: clientIP,
		Status:   models.StatusSuccess,
		Details:  "admin login",
	})

	return sess, nil
}

// Logout destroys the session. It succeeds even when the session is
// already gone; a logout must never fail visibly.
func (s *AuthService) Logout(ctx context.Context, sessionID, actor, clientIP string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		util.Warn("Session destroy failed", zap.Error(err))
	}
	s.recorder.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   models.ActionLogout,
		Target:   actor,
		ClientIP: clientIP,
		Status:   models.StatusSuccess,
		Details:  "admin logout",
	})
	return nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, username, clientIP, reason string) {
	s.recorder.Record(ctx, audit.Entry{
		Actor:    username,
		Action:   models.ActionLoginFailure,
		Target:   username,
		ClientIP: clientIP,
		Status:   models.StatusFailure,
		Details:  audit.Details("reason", reason),
	})
}
