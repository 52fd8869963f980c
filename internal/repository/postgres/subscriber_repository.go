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

// SubscriberRepository reads and writes the FreeRADIUS tables. All
// secrets live in radcheck; radusergroup and radreply only ever get
// touched on delete, which clears a subscriber across all three tables
// in one transaction.
type SubscriberRepository struct {
	client *client.PostgresClient
}

func NewSubscriberRepository(pc *client.PostgresClient) *SubscriberRepository {
	return &SubscriberRepository{client: pc}
}

// Create inserts the password row for a new subscriber. radcheck has no
// unique index on username, so the transaction takes an advisory lock on
// the username before the existence check; two concurrent creates for
// the same name serialize on that lock and the second one sees the row.
func (r *SubscriberRepository) Create(ctx context.Context, cred *models.Credential) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.client.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, cred.Username); err != nil {
		return fmt.Errorf("failed to lock username: %w", err)
	}

	var one int
	err = tx.QueryRow(ctx,
		`SELECT 1 FROM radcheck WHERE username = $1 LIMIT 1`,
		cred.Username).Scan(&one)
	if err == nil {
		return ErrSubscriberExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check subscriber existence: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO radcheck (username, attribute, op, value) VALUES ($1, $2, ':=', $3)`,
		cred.Username, string(cred.Attribute), cred.Value)
	if err != nil {
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subscriber create: %w", err)
	}
	return nil
}

// List returns every subscriber username with its radcheck entry count,
// ordered by username.
func (r *SubscriberRepository) List(ctx context.Context) ([]models.Subscriber, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.client.Pool.Query(ctx,
		`SELECT username, COUNT(id)
		 FROM radcheck
		 GROUP BY username
		 ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(&sub.Username, &sub.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("subscriber listing failed: %w", err)
	}
	return subscribers, nil
}

// GetCredential loads the password row for a subscriber.
func (r *SubscriberRepository) GetCredential(ctx context.Context, username string) (*models.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		cred      models.Credential
		attribute string
	)
	err := r.client.Pool.QueryRow(ctx,
		`SELECT username, attribute, value
		 FROM radcheck
		 WHERE username = $1 AND attribute = ANY($2)
		 LIMIT 1`,
		username, models.PasswordAttributes()).Scan(&cred.Username, &attribute, &cred.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to load subscriber credential: %w", err)
	}
	cred.Attribute = models.CredentialKind(attribute)
	return &cred, nil
}

// CountEntries returns the subscriber's radcheck row count, the same
// figure List reports per username.
func (r *SubscriberRepository) CountEntries(ctx context.Context, username string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	err := r.client.Pool.QueryRow(ctx,
		`SELECT COUNT(id) FROM radcheck WHERE username = $1`,
		username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriber entries: %w", err)
	}
	return count, nil
}

// Groups returns the subscriber's group memberships in priority order.
func (r *SubscriberRepository) Groups(ctx context.Context, username string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.client.Pool.Query(ctx,
		`SELECT groupname FROM radusergroup WHERE username = $1 ORDER BY priority ASC`,
		username)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriber groups: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var group string
		if err := rows.Scan(&group); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("group listing failed: %w", err)
	}
	return groups, nil
}

// UpdatePassword replaces the subscriber's password row, switching the
// attribute when the credential kind changes.
func (r *SubscriberRepository) UpdatePassword(ctx context.Context, username string, kind models.CredentialKind, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.client.Pool.Exec(ctx,
		`UPDATE radcheck
		 SET attribute = $2, value = $3
		 WHERE username = $1 AND attribute = ANY($4)`,
		username, string(kind), value, models.PasswordAttributes())
	if err != nil {
		return fmt.Errorf("failed to update subscriber password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

// Delete removes a subscriber from radusergroup, radreply and radcheck
// in one transaction. Either every trace goes or none does.
func (r *SubscriberRepository) Delete(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.client.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM radusergroup WHERE username = $1`, username); err != nil {
		return fmt.Errorf("failed to delete group memberships: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM radreply WHERE username = $1`, username); err != nil {
		return fmt.Errorf("failed to delete reply attributes: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM radcheck WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete check attributes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriberNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subscriber delete: %w", err)
	}
	return nil
}

// CountSubscribers returns the number of distinct radcheck usernames.
func (r *SubscriberRepository) CountSubscribers(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	err := r.client.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT username) FROM radcheck`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}

// CountGroups returns the number of distinct RADIUS groups.
func (r *SubscriberRepository) CountGroups(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	err := r.client.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT groupname) FROM radusergroup`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return count, nil
}
