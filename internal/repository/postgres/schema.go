package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"radius-admin/internal/client"
)

// Sentinel errors shared by the repositories in this package. Services
// map them onto their own error taxonomy.
var (
	ErrSubscriberExists   = errors.New("subscriber already exists")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrAdminNotFound      = errors.New("admin account not found")
)

// EnsureSchema creates the tables this panel owns: operator accounts
// and panel settings. The FreeRADIUS tables (radcheck, radreply,
// radusergroup) belong to the RADIUS deployment and are never created
// or altered here.
func EnsureSchema(ctx context.Context, pc *client.PostgresClient) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS admin_users (
			username       TEXT PRIMARY KEY,
			password_hash  TEXT NOT NULL,
			password_salt  TEXT NOT NULL,
			pepper_version INT NOT NULL,
			algorithm      TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_login_at  TIMESTAMPTZ,
			last_login_ip  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			setting_key   TEXT PRIMARY KEY,
			setting_value TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := pc.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
