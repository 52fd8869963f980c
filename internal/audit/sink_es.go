package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"radius-admin/internal/bucketing"
	"radius-admin/internal/client"
	"radius-admin/internal/models"
)

// ESSink indexes audit records into daily indices for free-text search.
// It doubles as the Searcher behind the audit search endpoint.
type ESSink struct {
	client    *client.ESClient
	baseIndex string
	buckets   *bucketing.Manager
}

func NewESSink(esClient *client.ESClient, baseIndex string, buckets *bucketing.Manager) *ESSink {
	return &ESSink{
		client:    esClient,
		baseIndex: baseIndex,
		buckets:   buckets,
	}
}

func (s *ESSink) Name() string { return "elasticsearch" }

func (s *ESSink) Write(ctx context.Context, rec *models.AuditRecord) error {
	index := fmt.Sprintf("%s-%s", s.baseIndex, s.buckets.DateBucket())
	return s.client.Index(ctx, index, rec.ID.String(), rec)
}

// Search runs a query-string search across all daily indices and
// returns matching records, newest first.
func (s *ESSink) Search(ctx context.Context, query string, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	body := map[string]interface{}{
		"size": limit,
		"sort": []map[string]interface{}{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query":            query,
				"fields":           []string{"actor", "target", "details", "client_ip", "action"},
				"default_operator": "AND",
			},
		},
	}

	res, err := s.client.Search(ctx, s.baseIndex+"-*", body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("audit search failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.AuditRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	records := make([]models.AuditRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source)
	}
	return records, nil
}
