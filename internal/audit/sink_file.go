package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"radius-admin/internal/models"
)

// FileSink appends one formatted line per record to a local log file.
// This is the sink operators read with tail and grep, so the format is
// a fixed single line per record.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	path string
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &FileSink{file: f, path: path}, nil
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Write(ctx context.Context, rec *models.AuditRecord) error {
	line := FormatLine(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to append audit line: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// FormatLine renders a record in the fixed pipe-separated layout:
//
//	[ts] User: x | Action: a | Target: t | IP: i | Status: s | Details: d
func FormatLine(rec *models.AuditRecord) string {
	return fmt.Sprintf("[%s] User: %s | Action: %s | Target: %s | IP: %s | Status: %s | Details: %s\n",
		rec.Timestamp.Format("2006-01-02 15:04:05"),
		oneLine(rec.Actor),
		rec.Action,
		oneLine(rec.Target),
		oneLine(rec.ClientIP),
		rec.Status,
		oneLine(rec.Details),
	)
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
