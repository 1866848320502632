package feed

import (
	"context"

	"campusreport/backend/internal/models"
)

// Publisher emits complaint events to the live feed.
type Publisher interface {
	Publish(ctx context.Context, ev models.ComplaintEvent) error
}

// EventBus is the Redis side of the feed.
type EventBus interface {
	PublishComplaintEvent(ctx context.Context, ev models.ComplaintEvent) error
}

// RedisPublisher publishes on Redis; every instance's listener delivers to its own hub.
type RedisPublisher struct {
	bus EventBus
}

func NewRedisPublisher(bus EventBus) *RedisPublisher {
	return &RedisPublisher{bus: bus}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev models.ComplaintEvent) error {
	return p.bus.PublishComplaintEvent(ctx, ev)
}

// LocalPublisher hands events straight to a hub, for single-instance deployments without Redis.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(h *Hub) *LocalPublisher {
	return &LocalPublisher{hub: h}
}

func (p *LocalPublisher) Publish(_ context.Context, ev models.ComplaintEvent) error {
	p.hub.Broadcast(ev)
	return nil
}
