// Package auth registers users, verifies credentials and issues bearer tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	invalidCredentials = "invalid credentials"
	maxPasswordBytes   = 72
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserView is the public shape of a user account.
type UserView struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func NewUserView(u *models.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type LoginResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type Service struct {
	store      storage.Storage
	tokens     *TokenManager
	bcryptCost int
}

func NewService(store storage.Storage, tokens *TokenManager, bcryptCost int) *Service {
	return &Service{store: store, tokens: tokens, bcryptCost: bcryptCost}
}

// Tokens exposes the manager used by the HTTP gate.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	// bcrypt's limit is in bytes; the validator counts runes.
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation("password must be at most 72 bytes")
	}
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, apperr.Validation("invalid role")
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	user := &models.User{Name: in.Name, Email: in.Email, Password: hash, Role: role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, apperr.Internal("create user", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	view := NewUserView(user)
	return &view, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthenticated(invalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}

	ok, err := CheckPassword(user.Password, in.Password)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
	}
	if !ok {
		return nil, apperr.Unauthenticated(invalidCredentials)
	}

	token, _, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &LoginResult{Token: token, User: NewUserView(user)}, nil
}

// Profile returns the account behind the session.
func (s *Service) Profile(ctx context.Context, sess Session) (*UserView, error) {
	user, err := s.store.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	view := NewUserView(user)
	return &view, nil
}

// PromoteUser changes the role of the account with the given email.
func (s *Service) PromoteUser(ctx context.Context, email, role string) (*UserView, error) {
	r, ok := models.ParseRole(role)
	if !ok || role == "" {
		return nil, apperr.Validation("invalid role")
	}
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if err := s.store.UpdateUserRole(ctx, user.ID, r); err != nil {
		return nil, apperr.Internal("update role", err)
	}
	user.Role = r
	view := NewUserView(user)
	return &view, nil
}
