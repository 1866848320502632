package storage

import (
	"context"

	"campusreport/backend/internal/models"
)

func (s *Service) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	return s.DB.WithContext(ctx).Create(msg).Error
}

func (s *Service) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	msgs := make([]models.ContactMessage, 0)
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) DeleteContactMessage(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
