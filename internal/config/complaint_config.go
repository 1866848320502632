package config

import "time"

const (
	// Complaints
	MaxEvidenceFiles = 5
	DefaultCategory  = "Other"

	// Auth
	DefaultTokenTTL = 24 * time.Hour
	TokenIssuer     = "campusreport-service"

	// Redis keys
	NotificationQueueKey = "notifications:outbox"
	ComplaintEventsTopic = "complaints:events"

	// Notifications
	NotificationPollTimeout = time.Second
	DefaultLanguage         = "en"
)

// Sort keys accepted by the all-complaints listing.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortStatus = "status"
	SortTitle  = "title"
)
