// Package analytics computes the dashboard aggregations over all complaints.
package analytics

import (
	"context"

	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	Storage storage.Storage
}

func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// GetComplaintStats runs the category, status and monthly aggregations concurrently.
// Results are recomputed on every call.
func (s *Service) GetComplaintStats(ctx context.Context, sess auth.Session) (*models.ComplaintStats, error) {
	if !sess.IsSupervisor() {
		return nil, apperr.Forbidden("access denied")
	}

	var stats models.ComplaintStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.CategoryStats, err = s.Storage.CountComplaintsByCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.StatusStats, err = s.Storage.CountComplaintsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyStats, err = s.Storage.CountComplaintsByMonth(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("aggregate complaints", err)
	}
	return &stats, nil
}
