package postgres

import (
	"context"
	"fmt"
	"time"

	"radius-admin/internal/client"
)

// SettingsRepository persists panel settings as key/value rows.
type SettingsRepository struct {
	client *client.PostgresClient
}

func NewSettingsRepository(pc *client.PostgresClient) *SettingsRepository {
	return &SettingsRepository{client: pc}
}

// GetAll returns every stored setting.
func (r *SettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.client.Pool.Query(ctx,
		`SELECT setting_key, setting_value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settings listing failed: %w", err)
	}
	return settings, nil
}

// UpsertMany writes a batch of settings atomically. A partial settings
// update would leave the panel and the NAS disagreeing, so all keys
// commit together or not at all.
func (r *SettingsRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.client.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, value := range values {
		_, err := tx.Exec(ctx,
			`INSERT INTO settings (setting_key, setting_value)
			 VALUES ($1, $2)
			 ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value`,
			key, value)
		if err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
