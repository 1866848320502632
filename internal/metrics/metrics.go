// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Complaint Metrics
	ComplaintsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Total number of complaints filed",
		},
		[]string{"category"},
	)

	ComplaintStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_updates_total",
			Help: "Total number of complaint status changes",
		},
		[]string{"status"},
	)

	EvidenceUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evidence_upload_duration_seconds",
			Help:    "Wall time of uploading all evidence files of one complaint",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Notification Metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notifications handled, by sender and result",
		},
		[]string{"sender", "result"},
	)

	// WebSocket Metrics
	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_connected_clients",
			Help: "Current number of connected live feed clients",
		},
	)

	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_total",
			Help: "Complaint events broadcast to the live feed",
		},
		[]string{"type"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordNotification records the outcome of one delivery attempt.
func RecordNotification(sender string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	NotificationsTotal.WithLabelValues(sender, result).Inc()
}
