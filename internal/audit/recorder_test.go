package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"radius-admin/internal/bucketing"
	"radius-admin/internal/config"
	"radius-admin/internal/models"
)

type captureSink struct {
	name    string
	records []*models.AuditRecord
	err     error
}

func (s *captureSink) Name() string { return s.name }

func (s *captureSink) Write(ctx context.Context, rec *models.AuditRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func testBuckets() *bucketing.Manager {
	return bucketing.NewManager(&config.Config{
		Bucketing: config.BucketingConfig{EventBuckets: 16},
	})
}

func TestRecordFansOutToAllSinks(t *testing.T) {
	first := &captureSink{name: "first"}
	second := &captureSink{name: "second"}
	r := NewRecorder(testBuckets(), first, second)

	r.Record(context.Background(), Entry{
		Actor:    "alice",
		Action:   models.ActionLoginSuccess,
		Target:   "alice",
		ClientIP: "192.0.2.10",
		Status:   models.StatusSuccess,
		Details:  "admin login",
	})

	if len(first.records) != 1 || len(second.records) != 1 {
		t.Fatalf("sink writes = %d/%d, want 1/1", len(first.records), len(second.records))
	}

	rec := first.records[0]
	if rec.ID == uuid.Nil {
		t.Fatal("record must get a UUID")
	}
	if rec.Timestamp.IsZero() {
		t.Fatal("record must get a timestamp")
	}
	if rec.EventBucket < 0 || rec.EventBucket >= 16 {
		t.Fatalf("event bucket %d out of range", rec.EventBucket)
	}
}

func TestRecordSurvivesFailingSink(t *testing.T) {
	broken := &captureSink{name: "broken", err: errors.New("sink down")}
	healthy := &captureSink{name: "healthy"}
	r := NewRecorder(testBuckets(), broken, healthy)

	// Must not panic and must still reach the healthy sink.
	r.Record(context.Background(), Entry{
		Actor:    "alice",
		Action:   models.ActionUserDeleted,
		Target:   "bob",
		ClientIP: "192.0.2.10",
		Status:   models.StatusSuccess,
	})

	if len(healthy.records) != 1 {
		t.Fatalf("healthy sink writes = %d, want 1", len(healthy.records))
	}
}

func TestRecordDropsUnknownAction(t *testing.T) {
	sink := &captureSink{name: "sink"}
	r := NewRecorder(testBuckets(), sink)

	r.Record(context.Background(), Entry{
		Actor:  "alice",
		Action: models.AuditAction("made_up_action"),
	})

	if len(sink.records) != 0 {
		t.Fatalf("unknown action must not be recorded, got %d writes", len(sink.records))
	}
}

func TestRecordDefaultsStatusToInfo(t *testing.T) {
	sink := &captureSink{name: "sink"}
	r := NewRecorder(testBuckets(), sink)

	r.Record(context.Background(), Entry{
		Actor:  "alice",
		Action: models.ActionLogout,
	})

	if got := sink.records[0].Status; got != models.StatusInfo {
		t.Fatalf("status = %q, want info", got)
	}
}

func TestDetailsRedactsSecrets(t *testing.T) {
	got := Details(
		"attribute", "Cleartext-Password",
		"password", "Hunter2!",
		"radius_secret", "s3cr3t",
	)

	if strings.Contains(got, "Hunter2!") || strings.Contains(got, "s3cr3t") {
		t.Fatalf("secret value leaked into details: %q", got)
	}
	if !strings.Contains(got, "password=[redacted]") {
		t.Fatalf("expected redaction marker, got %q", got)
	}
	if !strings.Contains(got, "attribute=Cleartext-Password") {
		t.Fatalf("non-secret pair missing, got %q", got)
	}
}

func TestFormatLine(t *testing.T) {
	rec := &models.AuditRecord{
		ID:        uuid.New(),
		Timestamp: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
		Actor:     "alice",
		Action:    models.ActionUserCreated,
		Target:    "bob",
		ClientIP:  "192.0.2.10",
		Status:    models.StatusSuccess,
		Details:   "attribute=Cleartext-Password",
	}

	got := FormatLine(rec)
	want := "[2026-08-29 10:30:00] User: alice | Action: user_created | Target: bob | IP: 192.0.2.10 | Status: success | Details: attribute=Cleartext-Password\n"
	if got != want {
		t.Fatalf("FormatLine:\n got %q\nwant %q", got, want)
	}
}

func TestFormatLineStripsNewlines(t *testing.T) {
	rec := &models.AuditRecord{
		Timestamp: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
		Actor:     "alice",
		Action:    models.ActionUserModified,
		Target:    "bob\ninjected",
		Status:    models.StatusSuccess,
	}

	got := FormatLine(rec)
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("record must render as exactly one line, got %q", got)
	}
}
