package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisService(t *testing.T) (*storage.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return storage.NewStorageService(nil, rdb), mr
}

func TestNotificationQueue_RoundTripFIFO(t *testing.T) {
	s, _ := newRedisService(t)
	ctx := context.Background()

	first := models.Notification{Kind: models.NotificationComplaintSubmitted, To: "a@campus.edu", ComplaintID: "1"}
	second := models.Notification{Kind: models.NotificationComplaintStatusChanged, To: "b@campus.edu", ComplaintID: "2", Status: models.StatusResolved}
	require.NoError(t, s.EnqueueNotification(ctx, first))
	require.NoError(t, s.EnqueueNotification(ctx, second))

	got, err := s.DequeueNotification(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	got, err = s.DequeueNotification(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

func TestDequeueNotification_EmptyQueueTimesOut(t *testing.T) {
	s, _ := newRedisService(t)

	got, err := s.DequeueNotification(context.Background(), 50*time.Millisecond)

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDequeueNotification_MalformedPayload(t *testing.T) {
	s, mr := newRedisService(t)
	_, err := mr.Lpush("notifications:outbox", "{not json")
	require.NoError(t, err)

	_, err = s.DequeueNotification(context.Background(), 50*time.Millisecond)

	assert.Error(t, err)
}

func TestPublishComplaintEvent_ReachesSubscriber(t *testing.T) {
	s, _ := newRedisService(t)
	ctx := context.Background()

	sub := s.SubscribeComplaintEvents(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	ev := models.ComplaintEvent{Type: models.EventComplaintCreated, ComplaintID: "c-1", Status: models.StatusPending}
	require.NoError(t, s.PublishComplaintEvent(ctx, ev))

	select {
	case msg := <-sub.Channel():
		var got models.ComplaintEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "c-1", got.ComplaintID)
		assert.Equal(t, models.EventComplaintCreated, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBroker_DisabledWithoutRedis(t *testing.T) {
	s := storage.NewStorageService(nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.EnqueueNotification(ctx, models.Notification{}), storage.ErrBrokerDisabled)
	assert.ErrorIs(t, s.PublishComplaintEvent(ctx, models.ComplaintEvent{}), storage.ErrBrokerDisabled)
	_, err := s.DequeueNotification(ctx, time.Millisecond)
	assert.ErrorIs(t, err, storage.ErrBrokerDisabled)
}
