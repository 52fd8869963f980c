package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"radius-admin/internal/audit"
	"radius-admin/internal/config"
	"radius-admin/internal/encryption"
	"radius-admin/internal/models"
	"radius-admin/internal/session"
	"radius-admin/internal/util"
)

// SettingsStore is the slice of the settings repository the service
// needs.
type SettingsStore interface {
	GetAll(ctx context.Context) (map[string]string, error)
	UpsertMany(ctx context.Context, values map[string]string) error
}

type UpdateSettingsRequest struct {
	RadiusSecret   string `json:"radius_secret" validate:"required,min=8"`
	RadiusNASIP    string `json:"radius_nas_ip" validate:"required,ip4_addr"`
	SessionTimeout int    `json:"session_timeout" validate:"required,min=300,max=86400"`
}

// SettingsService manages the editable panel configuration. The RADIUS
// shared secret is encrypted before it touches the database and only
// decrypted for display to an authenticated admin.
type SettingsService struct {
	repo     SettingsStore
	enc      *encryption.Manager
	sessions *session.Manager
	recorder *audit.Recorder
	defaults config.SessionConfig
}

func NewSettingsService(
	repo SettingsStore,
	enc *encryption.Manager,
	sessions *session.Manager,
	recorder *audit.Recorder,
	defaults config.SessionConfig,
) *SettingsService {
	return &SettingsService{
		repo:     repo,
		enc:      enc,
		sessions: sessions,
		recorder: recorder,
		defaults: defaults,
	}
}

// Get returns the current settings with the secret decrypted.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		util.Error("Settings load failed", zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	settings := &models.Settings{
		RadiusNASIP:    stored[models.SettingRadiusNASIP],
		SessionTimeout: s.parseTimeout(stored[models.SettingSessionTimeout]),
	}

	if secret, ok := stored[models.SettingRadiusSecret]; ok {
		plaintext, err := s.enc.DecryptField(ctx, secret)
		if err != nil {
			util.Error("Secret decryption failed", zap.Error(err))
			return nil, ErrStoreUnavailable
		}
		settings.RadiusSecret = plaintext
	}

	return settings, nil
}

// Update validates and persists all settings atomically, then applies
// the new idle timeout to the running session manager.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest, actor, clientIP string) error {
	if err := validate.Struct(req); err != nil {
		s.recordUpdate(ctx, actor, clientIP, models.StatusFailure, "validation failed")
		return validationError(err)
	}

	encrypted, err := s.enc.EncryptField(ctx, req.RadiusSecret)
	if err != nil {
		util.Error("Secret encryption failed", zap.Error(err))
		s.recordUpdate(ctx, actor, clientIP, models.StatusFailure, "encryption failed")
		return ErrStoreUnavailable
	}

	values := map[string]string{
		models.SettingRadiusSecret:   encrypted,
		models.SettingRadiusNASIP:    req.RadiusNASIP,
		models.SettingSessionTimeout: strconv.Itoa(req.SessionTimeout),
	}
	if err := s.repo.UpsertMany(ctx, values); err != nil {
		util.Error("Settings persist failed", zap.Error(err))
		s.recordUpdate(ctx, actor, clientIP, models.StatusFailure, "store write failed")
		return ErrStoreUnavailable
	}

	s.sessions.SetIdleTimeout(time.Duration(req.SessionTimeout) * time.Second)

	s.recordUpdate(ctx, actor, clientIP, models.StatusSuccess,
		audit.Details("nas_ip", req.RadiusNASIP, "session_timeout", strconv.Itoa(req.SessionTimeout), "secret", "changed"))
	return nil
}

// SessionTimeoutSeconds resolves the configured idle timeout, falling
// back to the static default when no setting is stored or the store is
// unreachable.
func (s *SettingsService) SessionTimeoutSeconds(ctx context.Context) int {
	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		util.Warn("Settings load failed, using default session timeout", zap.Error(err))
		return int(s.defaults.IdleTimeout.Seconds())
	}
	if secs := s.parseTimeout(stored[models.SettingSessionTimeout]); secs > 0 {
		return secs
	}
	return int(s.defaults.IdleTimeout.Seconds())
}

func (s *SettingsService) parseTimeout(raw string) int {
	if raw == "" {
		return int(s.defaults.IdleTimeout.Seconds())
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return int(s.defaults.IdleTimeout.Seconds())
	}
	return secs
}

func (s *SettingsService) recordUpdate(ctx context.Context, actor, clientIP string, status models.AuditStatus, details string) {
	s.recorder.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   models.ActionSettingsUpdated,
		Target:   "settings",
		ClientIP: clientIP,
		Status:   status,
		Details:  details,
	})
}
