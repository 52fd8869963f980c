package service

import (
	"context"
	"errors"
	"testing"

	"radius-admin/internal/models"
)

type fakeSearcher struct {
	queries []string
}

func (s *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]models.AuditRecord, error) {
	s.queries = append(s.queries, query)
	return nil, nil
}

func TestSearchRejectsSuspiciousQueries(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := NewAuditService(nil, searcher)
	ctx := context.Background()

	cases := []string{
		"<script>alert(1)</script>",
		"status:${jndi:ldap}",
		"onerror=alert",
	}
	for _, query := range cases {
		if _, err := svc.Search(ctx, query, 50); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("query %q: got %v, want ErrValidationFailed", query, err)
		}
	}
	if len(searcher.queries) != 0 {
		t.Fatalf("suspicious queries reached the searcher: %v", searcher.queries)
	}

	if _, err := svc.Search(ctx, "login_failed alice", 50); err != nil {
		t.Fatalf("clean query: %v", err)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("clean query did not reach the searcher")
	}
}

func TestSearchUnavailableWithoutSearcher(t *testing.T) {
	svc := NewAuditService(nil, nil)
	if _, err := svc.Search(context.Background(), "alice", 50); !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("got %v, want ErrSearchUnavailable", err)
	}
}
