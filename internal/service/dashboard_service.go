package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"radius-admin/internal/audit"
	"radius-admin/internal/models"
	"radius-admin/internal/util"
)

const recentAuditCount = 10

// DashboardService assembles the landing page counters. The three
// lookups are independent, so they run concurrently.
type DashboardService struct {
	subscribers SubscriberStore
	audits      *AuditService
}

func NewDashboardService(subscribers SubscriberStore, audits *AuditService) *DashboardService {
	return &DashboardService{subscribers: subscribers, audits: audits}
}

func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.subscribers.CountSubscribers(gctx)
		if err != nil {
			return err
		}
		stats.TotalUsers = count
		return nil
	})

	g.Go(func() error {
		count, err := s.subscribers.CountGroups(gctx)
		if err != nil {
			return err
		}
		stats.TotalGroups = count
		return nil
	})

	g.Go(func() error {
		// Recent activity is decoration; a missing audit reader must
		// not blank the whole dashboard.
		records, err := s.audits.Query(gctx, audit.Filter{Limit: recentAuditCount})
		if err != nil {
			util.Warn("Recent audit lookup failed", zap.Error(err))
			return nil
		}
		stats.RecentRecords = records
		return nil
	})

	if err := g.Wait(); err != nil {
		util.Error("Dashboard stats failed", zap.Error(err))
		return nil, ErrStoreUnavailable
	}
	return stats, nil
}
