package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"radius-admin/internal/models"
)

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()

	for _, actor := range []string{"alice", "bob"} {
		err := sink.Write(context.Background(), &models.AuditRecord{
			ID:        uuid.New(),
			Timestamp: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
			Actor:     actor,
			Action:    models.ActionLoginSuccess,
			Target:    actor,
			ClientIP:  "192.0.2.10",
			Status:    models.StatusSuccess,
		})
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "User: alice") || !strings.Contains(lines[1], "User: bob") {
		t.Fatalf("append order wrong:\n%s", data)
	}
}
