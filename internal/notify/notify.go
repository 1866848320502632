// Package notify delivers transactional messages about complaints.
//
// Services hand a models.Notification to a Dispatcher. QueueDispatcher pushes it onto the Redis
// outbox, drained by Worker; DirectDispatcher delivers it on a goroutine. Either way the caller
// never waits for, or sees, a delivery failure.
package notify

import (
	"context"
	"errors"
	"fmt"

	"campusreport/backend/internal/localization"
	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/metrics"
	"campusreport/backend/internal/models"
)

// Message is a rendered notification.
type Message struct {
	To       string
	Subject  string
	Body     string
	Operator string
}

// Sender delivers a rendered message over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Deliverer renders a notification and hands it to every sender.
type Deliverer struct {
	localizer   *localization.Localizer
	senders     []Sender
	defaultLang string
}

func NewDeliverer(l *localization.Localizer, defaultLang string, senders ...Sender) *Deliverer {
	if defaultLang == "" {
		defaultLang = localization.FallbackLanguage
	}
	return &Deliverer{localizer: l, senders: senders, defaultLang: defaultLang}
}

// Senders returns the names of the configured senders.
func (d *Deliverer) Senders() []string {
	names := make([]string, len(d.senders))
	for i, s := range d.senders {
		names[i] = s.Name()
	}
	return names
}

// Render builds the subject, body and operator line for n.
func (d *Deliverer) Render(n models.Notification) (Message, error) {
	lang := n.Lang
	if lang == "" {
		lang = d.defaultLang
	}
	subject, err := d.localizer.Render(lang, n.Kind+".subject", n)
	if err != nil {
		return Message{}, err
	}
	body, err := d.localizer.Render(lang, n.Kind+".body", n)
	if err != nil {
		return Message{}, err
	}
	operator, err := d.localizer.Render(lang, "operator."+n.Kind, n)
	if err != nil {
		return Message{}, err
	}
	return Message{To: n.To, Subject: subject, Body: body, Operator: operator}, nil
}

// Deliver sends n through every sender. Each failure is logged and counted; the joined errors
// are returned for the caller to log. Nothing is retried.
func (d *Deliverer) Deliver(ctx context.Context, n models.Notification) error {
	msg, err := d.Render(n)
	if err != nil {
		return fmt.Errorf("render %s: %w", n.Kind, err)
	}

	var errs []error
	for _, s := range d.senders {
		err := s.Send(ctx, msg)
		metrics.RecordNotification(s.Name(), err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("sender", s.Name()).
				Str("kind", n.Kind).
				Str("complaint_id", n.ComplaintID).
				Msg("notification delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
