package handler

import (
	"context"

	"campusreport/backend/internal/analytics"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/complaint"
	"campusreport/backend/internal/contact"
	"campusreport/backend/internal/feed"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Auth       *auth.Service
	Complaints *complaint.Service
	Analytics  *analytics.Service
	Contact    *contact.Service
	Hub        *feed.Hub

	// Ping checks the backing stores for /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error

	// MaxUploadBytes caps a multipart complaint submission.
	MaxUploadBytes int64

	// AllowedOrigins restricts browser websocket upgrades. Empty or "*" allows any origin.
	AllowedOrigins []string
}

func NewHandler(a *auth.Service, c *complaint.Service, an *analytics.Service, ct *contact.Service, hub *feed.Hub) *Handler {
	return &Handler{
		Auth:           a,
		Complaints:     c,
		Analytics:      an,
		Contact:        ct,
		Hub:            hub,
		MaxUploadBytes: 32 << 20,
	}
}
