package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"radius-admin/internal/audit"
	"radius-admin/internal/hashing"
	"radius-admin/internal/models"
	"radius-admin/internal/repository/postgres"
	"radius-admin/internal/util"
)

// SubscriberStore is the slice of the RADIUS repository the subscriber
// flows need.
type SubscriberStore interface {
	Create(ctx context.Context, cred *models.Credential) error
	List(ctx context.Context) ([]models.Subscriber, error)
	GetCredential(ctx context.Context, username string) (*models.Credential, error)
	CountEntries(ctx context.Context, username string) (int, error)
	Groups(ctx context.Context, username string) ([]string, error)
	UpdatePassword(ctx context.Context, username string, kind models.CredentialKind, value string) error
	Delete(ctx context.Context, username string) error
	CountSubscribers(ctx context.Context) (int, error)
	CountGroups(ctx context.Context) (int, error)
}

type CreateSubscriberRequest struct {
	Username        string `json:"username" validate:"required,radius_username"`
	Password        string `json:"password" validate:"required,strong_password"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	UseNTHash       bool   `json:"use_nt_hash"`
}

type ChangePasswordRequest struct {
	Username           string `json:"username" validate:"required,radius_username"`
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,strong_password"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required"`
	UseNTHash          bool   `json:"use_nt_hash"`
}

// SubscriberService implements the RADIUS account flows. Plaintext
// subscriber passwords never reach logs or the audit trail; only the
// stored attribute kind is recorded.
type SubscriberService struct {
	repo     SubscriberStore
	recorder *audit.Recorder
}

func NewSubscriberService(repo SubscriberStore, recorder *audit.Recorder) *SubscriberService {
	return &SubscriberService{repo: repo, recorder: recorder}
}

// Create provisions a new subscriber with a single password row.
func (s *SubscriberService) Create(ctx context.Context, req CreateSubscriberRequest, actor, clientIP string) error {
	req.Username = util.SanitizeInput(req.Username)

	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	if req.Password != req.PasswordConfirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidationFailed)
	}

	cred := &models.Credential{
		Username:  req.Username,
		Attribute: models.CredentialCleartext,
		Value:     req.Password,
	}
	if req.UseNTHash {
		cred.Attribute = models.CredentialNTHash
		cred.Value = hashing.NTPasswordHash(req.Password)
	}

	if err := s.repo.Create(ctx, cred); err != nil {
		if errors.Is(err, postgres.ErrSubscriberExists) {
			return fmt.Errorf("%w: subscriber %s", ErrAlreadyExists, req.Username)
		}
		util.Error("Subscriber create failed", zap.String("username", req.Username), zap.Error(err))
		return ErrStoreUnavailable
	}

	s.recorder.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   models.ActionUserCreated,
		Target:   req.Username,
		ClientIP: clientIP,
		Status:   models.StatusSuccess,
		Details:  audit.Details("attribute", string(cred.Attribute)),
	})
	return nil
}

// List returns all subscribers, each with its group memberships.
func (s *SubscriberService) List(ctx context.Context) ([]models.Subscriber, error) {
	subscribers, err := s.repo.List(ctx)
	if err != nil {
		util.Error("Subscriber listing failed", zap.Error(err))
		return nil, ErrStoreUnavailable
	}
	return subscribers, nil
}

// Get returns one subscriber with groups. The stored secret is never
// included.
func (s *SubscriberService) Get(ctx context.Context, username string) (*models.Subscriber, error) {
	username = util.SanitizeInput(username)

	cred, err := s.repo.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, postgres.ErrSubscriberNotFound) {
			return nil, fmt.Errorf("%w: subscriber %s", ErrNotFound, username)
		}
		util.Error("Subscriber lookup failed", zap.String("username", username), zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	entries, err := s.repo.CountEntries(ctx, username)
	if err != nil {
		util.Error("Entry count failed", zap.String("username", username), zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	groups, err := s.repo.Groups(ctx, username)
	if err != nil {
		util.Error("Group lookup failed", zap.String("username", username), zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	return &models.Subscriber{
		Username:   cred.Username,
		EntryCount: entries,
		Groups:     groups,
	}, nil
}

// ChangePassword verifies the current secret before storing the new
// one. NT-hash rows compare against the hash of the submitted current
// password.
func (s *SubscriberService) ChangePassword(ctx context.Context, req ChangePasswordRequest, actor, clientIP string) error {
	req.Username = util.SanitizeInput(req.Username)

	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	if req.NewPassword != req.NewPasswordConfirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidationFailed)
	}

	cred, err := s.repo.GetCredential(ctx, req.Username)
	if err != nil {
		if errors.Is(err, postgres.ErrSubscriberNotFound) {
			return fmt.Errorf("%w: subscriber %s", ErrNotFound, req.Username)
		}
		util.Error("Subscriber lookup failed", zap.String("username", req.Username), zap.Error(err))
		return ErrStoreUnavailable
	}

	submitted := req.CurrentPassword
	if cred.Attribute == models.CredentialNTHash {
		submitted = hashing.NTPasswordHash(req.CurrentPassword)
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(cred.Value)) != 1 {
		s.recorder.Record(ctx, audit.Entry{
			Actor:    actor,
			Action:   models.ActionUserModified,
			Target:   req.Username,
			ClientIP: clientIP,
			Status:   models.StatusFailure,
			Details:  audit.Details("reason", "current password mismatch"),
		})
		return fmt.Errorf("%w: current password is incorrect", ErrValidationFailed)
	}

	kind := models.CredentialCleartext
	value := req.NewPassword
	if req.UseNTHash {
		kind = models.CredentialNTHash
		value = hashing.NTPasswordHash(req.NewPassword)
	}

	if err := s.repo.UpdatePassword(ctx, req.Username, kind, value); err != nil {
		if errors.Is(err, postgres.ErrSubscriberNotFound) {
			return fmt.Errorf("%w: subscriber %s", ErrNotFound, req.Username)
		}
		util.Error("Password update failed", zap.String("username", req.Username), zap.Error(err))
		return ErrStoreUnavailable
	}

	s.recorder.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   models.ActionUserModified,
		Target:   req.Username,
		ClientIP: clientIP,
		Status:   models.StatusSuccess,
		Details:  audit.Details("change", "password", "attribute", string(kind)),
	})
	return nil
}

// Delete removes a subscriber across every FreeRADIUS table.
func (s *SubscriberService) Delete(ctx context.Context, username, actor, clientIP string) error {
	username = util.SanitizeInput(username)
	if !util.ValidUsername(username) {
		return fmt.Errorf("%w: invalid username", ErrValidationFailed)
	}

	if err := s.repo.Delete(ctx, username); err != nil {
		if errors.Is(err, postgres.ErrSubscriberNotFound) {
			return fmt.Errorf("%w: subscriber %s", ErrNotFound, username)
		}
		util.Error("Subscriber delete failed", zap.String("username", username), zap.Error(err))
		return ErrStoreUnavailable
	}

	s.recorder.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   models.ActionUserDeleted,
		Target:   username,
		ClientIP: clientIP,
		Status:   models.StatusSuccess,
		Details:  "subscriber removed from radcheck, radreply and radusergroup",
	})
	return nil
}
