package storage

import (
	"context"
	"errors"
	"fmt"

	"campusreport/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// ComplaintQuery narrows and orders a complaint listing.
// SortBy must be one of the config.Sort* keys; an empty value sorts newest first.
type ComplaintQuery struct {
	UserID    string
	Category  string
	SortBy    string
	WithOwner bool
}

// Storage is the document store used by the services.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) error

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, id string, status models.Status) (*models.Complaint, error)

	CountComplaintsByCategory(ctx context.Context) ([]models.GroupCount, error)
	CountComplaintsByStatus(ctx context.Context) ([]models.GroupCount, error)
	CountComplaintsByMonth(ctx context.Context) ([]models.GroupCount, error)

	CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error
	ListContactMessages(ctx context.Context) ([]models.ContactMessage, error)
	DeleteContactMessage(ctx context.Context, id string) error
}

// Service implements Storage on PostgreSQL and Broker on Redis.
// Redis may be nil when the broker is disabled.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService wraps the database and the optional Redis client.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Open connects to PostgreSQL. Driver errors are translated so unique violations surface as
// gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.ContactMessage{},
	)
}

// Ping checks both backends; a nil Redis client is skipped.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// validID filters out identifiers PostgreSQL would reject as malformed uuids.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
