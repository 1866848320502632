package feed

import (
	"context"
	"encoding/json"

	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Subscriber opens the complaint events subscription.
type Subscriber interface {
	SubscribeComplaintEvents(ctx context.Context) *redis.PubSub
}

// StartPubSubListener forwards every event published on Redis, by any instance, to the local hub.
// It returns once the subscription is confirmed.
func (h *Hub) StartPubSubListener(ctx context.Context, s Subscriber) error {
	pubsub := s.SubscribeComplaintEvents(ctx)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ComplaintEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logging.Error().Err(err).Msg("error unmarshalling complaint event")
					continue
				}
				h.Broadcast(ev)
			}
		}
	}()
	return nil
}
