package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"radius-admin/internal/client"
	"radius-admin/internal/models"
)

// AdminRepository stores the panel's operator accounts.
type AdminRepository struct {
	client *client.PostgresClient
}

func NewAdminRepository(pc *client.PostgresClient) *AdminRepository {
	return &AdminRepository{client: pc}
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var admin models.AdminUser
	err := r.client.Pool.QueryRow(ctx,
		`SELECT username, password_hash, password_salt, pepper_version, algorithm,
		        created_at, last_login_at, last_login_ip
		 FROM admin_users WHERE username = $1`,
		username).Scan(
		&admin.Username,
		&admin.PasswordHash,
		&admin.PasswordSalt,
		&admin.PepperVersion,
		&admin.Algorithm,
		&admin.CreatedAt,
		&admin.LastLoginAt,
		&admin.LastLoginIP,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to load admin account: %w", err)
	}
	return &admin, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.client.Pool.Exec(ctx,
		`INSERT INTO admin_users (username, password_hash, password_salt, pepper_version, algorithm, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		admin.Username,
		admin.PasswordHash,
		admin.PasswordSalt,
		admin.PepperVersion,
		admin.Algorithm,
		admin.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdateLastLogin(ctx context.Context, username, clientIP string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.client.Pool.Exec(ctx,
		`UPDATE admin_users SET last_login_at = now(), last_login_ip = $2 WHERE username = $1`,
		username, clientIP)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	if err := r.client.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admin accounts: %w", err)
	}
	return count, nil
}
