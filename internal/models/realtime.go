package models

import "time"

// Event types published on the live complaint feed.
const (
	EventComplaintCreated       = "complaint.created"
	EventComplaintStatusChanged = "complaint.status_changed"
)

// ComplaintEvent is pushed to connected dashboards and fanned out through Redis.
type ComplaintEvent struct {
	Type        string    `json:"type"`
	ComplaintID string    `json:"complaint_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	Location    Location  `json:"location"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewComplaintEvent builds an event snapshot of c.
func NewComplaintEvent(eventType string, c *Complaint) ComplaintEvent {
	return ComplaintEvent{
		Type:        eventType,
		ComplaintID: c.ID,
		Title:       c.Title,
		Category:    c.Category,
		Status:      c.Status,
		Location:    c.Location,
		OccurredAt:  time.Now().UTC(),
	}
}

// Notification kinds.
const (
	NotificationComplaintSubmitted     = "complaint_submitted"
	NotificationComplaintStatusChanged = "complaint_status_changed"
)

// Notification is a transactional message queued for delivery to a complaint owner.
type Notification struct {
	Kind        string `json:"kind"`
	To          string `json:"to"`
	Name        string `json:"name"`
	ComplaintID string `json:"complaint_id"`
	Title       string `json:"title"`
	Status      Status `json:"status"`
	Lang        string `json:"lang,omitempty"`
}
