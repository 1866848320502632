// Package contact stores messages from the public contact form for admins to read.
package contact

import (
	"context"
	"errors"
	"strings"

	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/validation"
)

type SubmitInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Message  string `json:"message" validate:"required,max=5000"`
}

type Service struct {
	Storage storage.Storage
}

func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.ContactMessage, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	msg := &models.ContactMessage{Username: in.Username, Email: in.Email, Message: in.Message}
	if err := s.Storage.CreateContactMessage(ctx, msg); err != nil {
		return nil, apperr.Internal("save contact message", err)
	}
	logging.Ctx(ctx).Info().Str("contact_id", msg.ID).Msg("contact message received")
	return msg, nil
}

// List returns all messages, newest first. Admins only.
func (s *Service) List(ctx context.Context, sess auth.Session) ([]models.ContactMessage, error) {
	if sess.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("access denied")
	}
	msgs, err := s.Storage.ListContactMessages(ctx)
	if err != nil {
		return nil, apperr.Internal("list contact messages", err)
	}
	return msgs, nil
}

func (s *Service) Delete(ctx context.Context, sess auth.Session, id string) error {
	if sess.Role != models.RoleAdmin {
		return apperr.Forbidden("access denied")
	}
	err := s.Storage.DeleteContactMessage(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("message not found")
	}
	if err != nil {
		return apperr.Internal("delete contact message", err)
	}
	return nil
}
