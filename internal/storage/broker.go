package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campusreport/backend/internal/config"
	"campusreport/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrBrokerDisabled is returned by broker calls on a Service without a Redis client.
var ErrBrokerDisabled = errors.New("redis broker disabled")

// Broker carries the notification outbox and the complaint event channel.
type Broker interface {
	EnqueueNotification(ctx context.Context, n models.Notification) error
	// DequeueNotification blocks up to timeout and returns nil, nil when the queue stayed empty.
	DequeueNotification(ctx context.Context, timeout time.Duration) (*models.Notification, error)
	PublishComplaintEvent(ctx context.Context, ev models.ComplaintEvent) error
	SubscribeComplaintEvents(ctx context.Context) *redis.PubSub
}

// EnqueueNotification pushes n onto the outbox list.
func (s *Service) EnqueueNotification(ctx context.Context, n models.Notification) error {
	if s.Redis == nil {
		return ErrBrokerDisabled
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.Redis.LPush(ctx, config.NotificationQueueKey, payload).Err()
}

func (s *Service) DequeueNotification(ctx context.Context, timeout time.Duration) (*models.Notification, error) {
	if s.Redis == nil {
		return nil, ErrBrokerDisabled
	}
	res, err := s.Redis.BRPop(ctx, timeout, config.NotificationQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}
	var n models.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return &n, nil
}

// PublishComplaintEvent publishes ev on the complaint events channel
func (s *Service) PublishComplaintEvent(ctx context.Context, ev models.ComplaintEvent) error {
	if s.Redis == nil {
		return ErrBrokerDisabled
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, config.ComplaintEventsTopic, payload).Err()
}

func (s *Service) SubscribeComplaintEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, config.ComplaintEventsTopic)
}
