package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dukex/decmed/pkg/notify"
)

// MockNotifier is a mock implementation of notify.Notifier interface.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, toast notify.Toast) {
	m.Called(ctx, toast)
}
