package notify

import (
	"context"
	"time"

	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/models"
)

// Dispatcher accepts notifications for asynchronous delivery.
type Dispatcher interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Queue is the outbox a QueueDispatcher writes to and a Worker drains.
type Queue interface {
	EnqueueNotification(ctx context.Context, n models.Notification) error
	DequeueNotification(ctx context.Context, timeout time.Duration) (*models.Notification, error)
}

// QueueDispatcher enqueues on the Redis outbox.
type QueueDispatcher struct {
	queue Queue
}

func NewQueueDispatcher(q Queue) *QueueDispatcher {
	return &QueueDispatcher{queue: q}
}

func (d *QueueDispatcher) Notify(ctx context.Context, n models.Notification) error {
	return d.queue.EnqueueNotification(ctx, n)
}

// DirectDispatcher delivers on a new goroutine and returns immediately.
type DirectDispatcher struct {
	deliverer *Deliverer
	timeout   time.Duration
}

func NewDirectDispatcher(d *Deliverer) *DirectDispatcher {
	return &DirectDispatcher{deliverer: d, timeout: 30 * time.Second}
}

func (d *DirectDispatcher) Notify(ctx context.Context, n models.Notification) error {
	// The request context ends with the response, so delivery gets its own.
	reqID := logging.RequestIDFromContext(ctx)
	go func() {
		dctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if reqID != "" {
			dctx = logging.ContextWithRequestID(dctx, reqID)
		}
		if err := d.deliverer.Deliver(dctx, n); err != nil {
			logging.Ctx(dctx).Error().Err(err).Str("kind", n.Kind).Msg("direct notification failed")
		}
	}()
	return nil
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, models.Notification) error { return nil }
