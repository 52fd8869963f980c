package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"radius-admin/internal/audit"
	"radius-admin/internal/models"
	"radius-admin/internal/util"
)

// AuditService fronts the queryable audit trail. Reader and searcher
// are optional; a deployment without ClickHouse or Elasticsearch still
// records audits, it just cannot browse them here.
type AuditService struct {
	reader   audit.Reader
	searcher audit.Searcher
}

func NewAuditService(reader audit.Reader, searcher audit.Searcher) *AuditService {
	return &AuditService{reader: reader, searcher: searcher}
}

// Query returns filtered audit records, newest first.
func (s *AuditService) Query(ctx context.Context, f audit.Filter) ([]models.AuditRecord, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("%w: no audit reader configured", ErrStoreUnavailable)
	}
	if f.Action != "" && !f.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidationFailed, f.Action)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, f.Status)
	}

	records, err := s.reader.Query(ctx, f)
	if err != nil {
		util.Error("Audit query failed", zap.Error(err))
		return nil, ErrStoreUnavailable
	}
	return records, nil
}

// Search runs a free-text search over the trail.
func (s *AuditService) Search(ctx context.Context, query string, limit int) ([]models.AuditRecord, error) {
	if s.searcher == nil {
		return nil, ErrSearchUnavailable
	}
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidationFailed)
	}
	if util.ContainsSuspicious(query) {
		return nil, fmt.Errorf("%w: search query contains disallowed input", ErrValidationFailed)
	}

	records, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		util.Error("Audit search failed", zap.Error(err))
		return nil, ErrStoreUnavailable
	}
	return records, nil
}
