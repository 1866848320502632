// Package complaint files incident reports and lets supervisors triage them.
package complaint

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/feed"
	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/metrics"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/notify"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/upload"
	"campusreport/backend/internal/validation"
)

const (
	msgInvalidLocation = "invalid or missing location coordinates"
	msgForbidden       = "access denied"
)

// CreateInput is a complaint submission. Coordinates arrive as the raw form strings.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Latitude    string
	Longitude   string
	Files       []upload.File
}

type createFields struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"max=100"`
}

// ListQuery filters and orders the supervisor listing.
type ListQuery struct {
	Category string
	SortBy   string
}

// Service handles the business logic for complaints.
type Service struct {
	Storage  storage.Storage
	Uploader upload.Uploader
	Notifier notify.Dispatcher
	Events   feed.Publisher
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, u upload.Uploader, n notify.Dispatcher, p feed.Publisher) *Service {
	return &Service{Storage: s, Uploader: u, Notifier: n, Events: p}
}

// CreateComplaint validates, uploads evidence, then persists. Nothing is stored when validation or
// any upload fails. Notification and feed delivery happen afterwards and never fail the call.
func (s *Service) CreateComplaint(ctx context.Context, sess auth.Session, in CreateInput) (*models.Complaint, error) {
	loc, err := parseLocation(in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}

	fields := createFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
	}
	if err := validation.ValidateStruct(&fields); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if strings.ContainsAny(fields.Title, "\r\n") || strings.ContainsAny(fields.Category, "\r\n") {
		return nil, apperr.Validation("title and category must be a single line")
	}
	if len(in.Files) > config.MaxEvidenceFiles {
		return nil, apperr.Validation("too many evidence files (max " + strconv.Itoa(config.MaxEvidenceFiles) + ")")
	}
	if fields.Category == "" {
		fields.Category = config.DefaultCategory
	}

	start := time.Now()
	urls, err := upload.UploadAll(ctx, s.Uploader, in.Files)
	metrics.EvidenceUploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, apperr.Upstream("evidence upload failed", err)
	}

	c := &models.Complaint{
		UserID:      sess.UserID,
		Title:       fields.Title,
		Description: fields.Description,
		Category:    fields.Category,
		Status:      models.StatusPending,
		Evidence:    urls,
		Location:    loc,
	}
	if err := s.Storage.CreateComplaint(ctx, c); err != nil {
		return nil, apperr.Internal("save complaint", err)
	}

	metrics.ComplaintsCreatedTotal.WithLabelValues(c.Category).Inc()
	logging.Ctx(ctx).Info().
		Str("complaint_id", c.ID).
		Str("user_id", c.UserID).
		Int("evidence", len(urls)).
		Msg("complaint created")

	s.notifyOwner(ctx, models.NotificationComplaintSubmitted, c)
	s.publish(ctx, models.EventComplaintCreated, c)
	return c, nil
}

// GetMyComplaints lists the caller's own complaints, newest first.
func (s *Service) GetMyComplaints(ctx context.Context, sess auth.Session) ([]models.Complaint, error) {
	out, err := s.Storage.ListComplaints(ctx, storage.ComplaintQuery{UserID: sess.UserID, SortBy: config.SortNewest})
	if err != nil {
		return nil, apperr.Internal("list complaints", err)
	}
	return out, nil
}

// GetAllComplaints lists every complaint with its owner for admins and authorities.
func (s *Service) GetAllComplaints(ctx context.Context, sess auth.Session, q ListQuery) ([]models.Complaint, error) {
	if !sess.IsSupervisor() {
		return nil, apperr.Forbidden(msgForbidden)
	}
	sortBy := strings.TrimSpace(q.SortBy)
	if !validSort(sortBy) {
		return nil, apperr.Validation("invalid sort key")
	}

	out, err := s.Storage.ListComplaints(ctx, storage.ComplaintQuery{
		Category:  strings.TrimSpace(q.Category),
		SortBy:    sortBy,
		WithOwner: true,
	})
	if err != nil {
		return nil, apperr.Internal("list complaints", err)
	}
	return out, nil
}

// UpdateComplaintStatus moves a complaint to any of the three statuses, including its current one.
func (s *Service) UpdateComplaintStatus(ctx context.Context, sess auth.Session, id, status string) (*models.Complaint, error) {
	if !sess.IsSupervisor() {
		return nil, apperr.Forbidden(msgForbidden)
	}
	st, ok := models.ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("invalid status")
	}

	c, err := s.Storage.UpdateComplaintStatus(ctx, id, st)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("complaint not found")
	}
	if err != nil {
		return nil, apperr.Internal("update status", err)
	}

	metrics.ComplaintStatusUpdatesTotal.WithLabelValues(string(st)).Inc()
	logging.Ctx(ctx).Info().
		Str("complaint_id", c.ID).
		Str("status", string(st)).
		Str("by", sess.UserID).
		Msg("complaint status updated")

	s.notifyOwner(ctx, models.NotificationComplaintStatusChanged, c)
	s.publish(ctx, models.EventComplaintStatusChanged, c)
	return c, nil
}

// GetComplaintMarkers returns the map view of every complaint, optionally by category.
func (s *Service) GetComplaintMarkers(ctx context.Context, sess auth.Session, category string) ([]models.ComplaintMarker, error) {
	if !sess.IsSupervisor() {
		return nil, apperr.Forbidden(msgForbidden)
	}
	list, err := s.Storage.ListComplaints(ctx, storage.ComplaintQuery{
		Category: strings.TrimSpace(category),
		SortBy:   config.SortNewest,
	})
	if err != nil {
		return nil, apperr.Internal("list complaints", err)
	}
	markers := make([]models.ComplaintMarker, len(list))
	for i := range list {
		markers[i] = list[i].Marker()
	}
	return markers, nil
}

func (s *Service) notifyOwner(ctx context.Context, kind string, c *models.Complaint) {
	if s.Notifier == nil {
		return
	}
	log := logging.Ctx(ctx)
	owner, err := s.Storage.GetUserByID(ctx, c.UserID)
	if err != nil {
		log.Warn().Err(err).Str("complaint_id", c.ID).Msg("owner lookup failed, notification skipped")
		return
	}
	n := models.Notification{
		Kind:        kind,
		To:          owner.Email,
		Name:        owner.Name,
		ComplaintID: c.ID,
		Title:       c.Title,
		Status:      c.Status,
	}
	if err := s.Notifier.Notify(ctx, n); err != nil {
		log.Warn().Err(err).Str("complaint_id", c.ID).Str("kind", kind).Msg("notification not queued")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, c *models.Complaint) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, models.NewComplaintEvent(eventType, c)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("complaint_id", c.ID).Msg("feed event not published")
	}
}

func parseLocation(lat, lng string) (models.Location, error) {
	la, okLat := parseCoordinate(lat, 90)
	lo, okLng := parseCoordinate(lng, 180)
	if !okLat || !okLng {
		return models.Location{}, apperr.Validation(msgInvalidLocation)
	}
	return models.Location{Latitude: la, Longitude: lo}, nil
}

func parseCoordinate(raw string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

func validSort(key string) bool {
	switch key {
	case "", config.SortNewest, config.SortOldest, config.SortStatus, config.SortTitle:
		return true
	}
	return false
}
