// Package feed streams complaint events to connected admin and authority dashboards.
package feed

import (
	"context"
	"sync/atomic"

	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/metrics"
	"campusreport/backend/internal/models"
)

// Hub owns the set of connected clients. All mutations happen on the Run goroutine.
type Hub struct {
	clients map[Client]struct{}

	RegisterCh   chan Client
	UnregisterCh chan Client
	broadcastCh  chan models.ComplaintEvent

	done    chan struct{}
	running atomic.Bool
	count   atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[Client]struct{}),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		broadcastCh:  make(chan models.ComplaintEvent, 64),
		done:         make(chan struct{}),
	}
}

// Run dispatches until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	if !h.running.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		for c := range h.clients {
			h.remove(c)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.RegisterCh:
			h.clients[c] = struct{}{}
			h.count.Add(1)
			metrics.FeedClients.Inc()
			logging.Debug().Str("user_id", c.GetUserID()).Msg("feed client registered")

		case c := <-h.UnregisterCh:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
			}

		case ev := <-h.broadcastCh:
			metrics.FeedEventsTotal.WithLabelValues(ev.Type).Inc()
			for c := range h.clients {
				select {
				case c.GetSendChannel() <- ev:
				default:
					// Slow consumer; drop it rather than stall the feed.
					logging.Warn().Str("user_id", c.GetUserID()).Msg("feed client too slow, disconnecting")
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c Client) {
	delete(h.clients, c)
	h.count.Add(-1)
	metrics.FeedClients.Dec()
	c.Close()
}

// Register adds c unless the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.RegisterCh <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c. It never blocks after the hub has stopped.
func (h *Hub) Unregister(c Client) {
	select {
	case h.UnregisterCh <- c:
	case <-h.done:
	}
}

// Broadcast queues ev for every connected client. Events are dropped once the hub stops.
func (h *Hub) Broadcast(ev models.ComplaintEvent) {
	select {
	case h.broadcastCh <- ev:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
