package complaint_test

import (
	"context"

	"campusreport/backend/internal/models"
	"campusreport/backend/internal/upload"

	"github.com/stretchr/testify/mock"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, f upload.File) (string, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, upload.File) string); ok {
		return fn(ctx, f), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Notify(ctx context.Context, n models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev models.ComplaintEvent) error {
	return m.Called(ctx, ev).Error(0)
}
