package feed

import "campusreport/backend/internal/models"

// Client is one connected dashboard.
type Client interface {
	// GetUserID returns the identifier of the user behind the connection.
	GetUserID() string
	// GetSendChannel returns the channel the hub writes events to.
	GetSendChannel() chan<- models.ComplaintEvent
	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the send channel. Only the hub calls it, once.
	Close()
}
