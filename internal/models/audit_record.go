package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the closed set of security-relevant actions. Keeping it
// typed prevents typo'd action strings from leaking into the trail.
type AuditAction string

const (
	ActionLoginSuccess      AuditAction = "login_success"
	ActionLoginFailure      AuditAction = "login_failure"
	ActionRateLimitExceeded AuditAction = "rate_limit_exceeded"
	ActionLogout            AuditAction = "logout"
	ActionUserCreated       AuditAction = "user_created"
	ActionUserModified      AuditAction = "user_modified"
	ActionUserDeleted       AuditAction = "user_deleted"
	ActionSettingsUpdated   AuditAction = "settings_updated"
	ActionForgeryRejected   AuditAction = "forgery_rejected"
)

// Valid reports whether a is one of the known actions.
func (a AuditAction) Valid() bool {
	switch a {
	case ActionLoginSuccess, ActionLoginFailure, ActionRateLimitExceeded,
		ActionLogout, ActionUserCreated, ActionUserModified,
		ActionUserDeleted, ActionSettingsUpdated, ActionForgeryRejected:
		return true
	}
	return false
}

type AuditStatus string

const (
	StatusSuccess AuditStatus = "success"
	StatusFailure AuditStatus = "failure"
	StatusInfo    AuditStatus = "info"
)

func (s AuditStatus) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusInfo:
		return true
	}
	return false
}

// AuditRecord is one immutable line of the audit trail. Records are
// append-only; nothing in the application mutates or deletes them.
type AuditRecord struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Timestamp   time.Time   `json:"timestamp" db:"ts"`
	Actor       string      `json:"actor" db:"actor"`
	Action      AuditAction `json:"action" db:"action"`
	Target      string      `json:"target" db:"target"`
	ClientIP    string      `json:"client_ip" db:"client_ip"`
	Status      AuditStatus `json:"status" db:"status"`
	Details     string      `json:"details" db:"details"`
	EventBucket int         `json:"-" db:"event_bucket"`
}
