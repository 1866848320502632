package storage

import (
	"context"

	"campusreport/backend/internal/config"
	"campusreport/backend/internal/models"

	"gorm.io/gorm"
)

var complaintOrder = map[string]string{
	"":                "created_at DESC",
	config.SortNewest: "created_at DESC",
	config.SortOldest: "created_at ASC",
	config.SortStatus: "status ASC, created_at DESC",
	config.SortTitle:  "title ASC",
}

// CreateComplaint inserts a new complaint row.
func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if complaint.Status == "" {
		complaint.Status = models.StatusPending
	}
	return s.DB.WithContext(ctx).Create(complaint).Error
}

func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var c models.Complaint
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListComplaints applies the owner and category filters and the requested order.
// An unrecognised SortBy falls back to newest first; callers validate it beforehand.
func (s *Service) ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error) {
	order, ok := complaintOrder[q.SortBy]
	if !ok {
		order = complaintOrder[config.SortNewest]
	}

	tx := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.WithOwner {
		tx = tx.Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		})
	}

	complaints := make([]models.Complaint, 0)
	if err := tx.Order(order).Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

// UpdateComplaintStatus sets the status in a single UPDATE and returns the stored row.
func (s *Service) UpdateComplaintStatus(ctx context.Context, id string, status models.Status) (*models.Complaint, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	res := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetComplaintByID(ctx, id)
}

func (s *Service) CountComplaintsByCategory(ctx context.Context) ([]models.GroupCount, error) {
	return s.countBy(ctx, "category", "count DESC, key ASC")
}

func (s *Service) CountComplaintsByStatus(ctx context.Context) ([]models.GroupCount, error) {
	return s.countBy(ctx, "status", "count DESC, key ASC")
}

// CountComplaintsByMonth buckets by creation month as YYYY-MM, oldest month first.
func (s *Service) CountComplaintsByMonth(ctx context.Context) ([]models.GroupCount, error) {
	return s.countBy(ctx, "to_char(created_at, 'YYYY-MM')", "key ASC")
}

func (s *Service) countBy(ctx context.Context, expr, order string) ([]models.GroupCount, error) {
	rows := make([]models.GroupCount, 0)
	err := s.DB.WithContext(ctx).
		Model(&models.Complaint{}).
		Select(expr + " AS key, COUNT(*) AS count").
		Group(expr).
		Order(order).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
