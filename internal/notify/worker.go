package notify

import (
	"context"
	"errors"
	"time"

	"campusreport/backend/internal/config"
	"campusreport/backend/internal/logging"
)

// Worker drains the outbox until its context is cancelled.
type Worker struct {
	queue       Queue
	deliverer   *Deliverer
	pollTimeout time.Duration
	errBackoff  time.Duration
}

func NewWorker(q Queue, d *Deliverer) *Worker {
	return &Worker{
		queue:       q,
		deliverer:   d,
		pollTimeout: config.NotificationPollTimeout,
		errBackoff:  time.Second,
	}
}

// Run blocks, delivering one notification at a time.
func (w *Worker) Run(ctx context.Context) {
	logging.Info().Strs("senders", w.deliverer.Senders()).Msg("notification worker started")
	defer logging.Info().Msg("notification worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := w.queue.DequeueNotification(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logging.Error().Err(err).Msg("dequeue notification")
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.errBackoff):
			}
			continue
		}
		if n == nil {
			continue
		}

		if err := w.deliverer.Deliver(ctx, *n); err != nil {
			logging.Error().Err(err).
				Str("kind", n.Kind).
				Str("complaint_id", n.ComplaintID).
				Msg("notification dropped")
		}
	}
}
