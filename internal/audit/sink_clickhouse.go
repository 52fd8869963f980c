package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"radius-admin/internal/client"
	"radius-admin/internal/models"
)

const auditTable = "audit_records"

// ClickHouseSink is both a Sink and the Reader behind the audit review
// screens. Records partition by month and expire server-side via TTL,
// so retention needs no application cleanup job.
type ClickHouseSink struct {
	client      *client.ClickHouseClient
	maxPageSize int
}

func NewClickHouseSink(ctx context.Context, chClient *client.ClickHouseClient, retentionDays, maxPageSize int) (*ClickHouseSink, error) {
	s := &ClickHouseSink{
		client:      chClient,
		maxPageSize: maxPageSize,
	}
	if err := s.ensureTable(ctx, retentionDays); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ClickHouseSink) ensureTable(ctx context.Context, retentionDays int) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id String,
			ts DateTime('UTC'),
			actor String,
			action LowCardinality(String),
			target String,
			client_ip String,
			status LowCardinality(String),
			details String,
			event_bucket UInt8
		) ENGINE = MergeTree
		PARTITION BY toYYYYMM(ts)
		ORDER BY (ts, event_bucket, id)
		TTL ts + INTERVAL %d DAY
	`, auditTable, retentionDays)

	if err := s.client.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure audit table: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

func (s *ClickHouseSink) Write(ctx context.Context, rec *models.AuditRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, ts, actor, action, target, client_ip, status, details, event_bucket)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, auditTable)

	err := s.client.Exec(ctx, query,
		rec.ID.String(),
		rec.Timestamp,
		rec.Actor,
		string(rec.Action),
		rec.Target,
		rec.ClientIP,
		string(rec.Status),
		rec.Details,
		uint8(rec.EventBucket),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Query returns records matching the filter, newest first. The limit is
// clamped to the configured page size no matter what the caller asks
// for.
func (s *ClickHouseSink) Query(ctx context.Context, f Filter) ([]models.AuditRecord, error) {
	limit := f.Limit
	if limit <= 0 || limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	var (
		conditions []string
		args       []interface{}
	)
	if f.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, string(f.Action))
	}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Actor != "" {
		conditions = append(conditions, "actor = ?")
		args = append(args, f.Actor)
	}
	if !f.From.IsZero() {
		conditions = append(conditions, "ts >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conditions = append(conditions, "ts <= ?")
		args = append(args, f.To.UTC())
	}

	query := fmt.Sprintf("SELECT id, ts, actor, action, target, client_ip, status, details, event_bucket FROM %s", auditTable)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ts DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.client.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []models.AuditRecord
	for rows.Next() {
		var (
			rec         models.AuditRecord
			id          string
			ts          time.Time
			action      string
			status      string
			eventBucket uint8
		)
		if err := rows.Scan(&id, &ts, &rec.Actor, &action, &rec.Target, &rec.ClientIP, &status, &rec.Details, &eventBucket); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Timestamp = ts
		rec.Action = models.AuditAction(action)
		rec.Status = models.AuditStatus(status)
		rec.EventBucket = int(eventBucket)
		if parsed, err := uuid.Parse(id); err == nil {
			rec.ID = parsed
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit query iteration failed: %w", err)
	}
	return records, nil
}
