package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Status is the complaint lifecycle label.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusUnderReview Status = "Under Review"
	StatusResolved    Status = "Resolved"
)

// Statuses lists every accepted status label.
var Statuses = []Status{StatusPending, StatusUnderReview, StatusResolved}

// ParseStatus accepts exactly one of the three labels. Matching is case-sensitive.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Location is the reported geolocation of an incident.
type Location struct {
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
}

// ComplaintOwner is the read projection of the owning user attached to admin listings.
type ComplaintOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (ComplaintOwner) TableName() string { return "users" }

// Complaint is an incident report. Only Status changes after creation.
type Complaint struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Owner       *ComplaintOwner `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Category    string          `gorm:"not null;default:Other;index" json:"category"`
	Status      Status          `gorm:"type:text;not null;default:Pending;index" json:"status"`
	Evidence    pq.StringArray  `gorm:"type:text[]" json:"evidence"`
	Location    Location        `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the ID is still empty.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ComplaintMarker is the map view of a complaint.
type ComplaintMarker struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      Status  `json:"status"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Marker projects the complaint onto its map marker.
func (c *Complaint) Marker() ComplaintMarker {
	return ComplaintMarker{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Category:    c.Category,
		Latitude:    c.Location.Latitude,
		Longitude:   c.Location.Longitude,
	}
}

// GroupCount is one bucket of an aggregation.
type GroupCount struct {
	Key   string `json:"_id"`
	Count int64  `json:"count"`
}

// ComplaintStats bundles the dashboard aggregations.
type ComplaintStats struct {
	CategoryStats []GroupCount `json:"categoryStats"`
	StatusStats   []GroupCount `json:"statusStats"`
	MonthlyStats  []GroupCount `json:"monthlyStats"`
}
