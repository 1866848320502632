package analytics_test

import (
	"context"
	"testing"
	"time"

	"campusreport/backend/internal/analytics"
	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetComplaintStats(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewMemory()

	add := func(at time.Time, category string, status models.Status) {
		store.SetClock(at)
		require.NoError(t, store.CreateComplaint(ctx, &models.Complaint{
			UserID: "u1", Title: "t", Description: "d", Category: category, Status: status,
		}))
	}
	add(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "Theft", models.StatusPending)
	add(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "Theft", models.StatusResolved)
	add(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), "Vandalism", models.StatusPending)
	add(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), "Harassment", models.StatusUnderReview)

	svc := analytics.NewService(store)
	stats, err := svc.GetComplaintStats(ctx, auth.Session{UserID: "a", Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, []models.GroupCount{
		{Key: "Theft", Count: 2},
		{Key: "Harassment", Count: 1},
		{Key: "Vandalism", Count: 1},
	}, stats.CategoryStats)
	assert.Equal(t, []models.GroupCount{
		{Key: "Pending", Count: 2},
		{Key: "Resolved", Count: 1},
		{Key: "Under Review", Count: 1},
	}, stats.StatusStats)
	assert.Equal(t, []models.GroupCount{
		{Key: "2023-12", Count: 1},
		{Key: "2024-01", Count: 1},
		{Key: "2024-03", Count: 2},
	}, stats.MonthlyStats)
}

func TestGetComplaintStats_EmptyAndForbidden(t *testing.T) {
	svc := analytics.NewService(storagetest.NewMemory())

	stats, err := svc.GetComplaintStats(context.Background(), auth.Session{UserID: "w", Role: models.RoleAuthority})
	require.NoError(t, err)
	assert.Empty(t, stats.CategoryStats)
	assert.NotNil(t, stats.MonthlyStats)

	_, err = svc.GetComplaintStats(context.Background(), auth.Session{UserID: "s", Role: models.RoleStudent})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
