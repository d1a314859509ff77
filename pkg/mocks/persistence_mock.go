package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/persistence"
)

// MockSessionStore is a mock implementation of persistence.SessionStore interface.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Load(ctx context.Context, client models.ClientKind) (*persistence.Snapshot, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.Snapshot), args.Error(1)
}

func (m *MockSessionStore) Save(ctx context.Context, snapshot *persistence.Snapshot) error {
	args := m.Called(ctx, snapshot)

	return args.Error(0)
}

func (m *MockSessionStore) Clear(ctx context.Context, client models.ClientKind) error {
	args := m.Called(ctx, client)

	return args.Error(0)
}

func (m *MockSessionStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockSessionStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
