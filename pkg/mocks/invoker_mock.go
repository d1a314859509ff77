package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/dukex/decmed/pkg/bridge"
)

// MockInvoker is a mock implementation of bridge.Invoker interface.
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	ret := m.Called(ctx, command, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}

	return ret.Get(0).(json.RawMessage), ret.Error(1)
}

// Success encodes data as the body of a resolved command.
func Success(data any) json.RawMessage {
	raw, err := json.Marshal(bridge.Response[any]{Status: bridge.StatusSuccess, Data: data})
	if err != nil {
		panic(err)
	}

	return raw
}

// Rejected builds the error of a rejected command.
func Rejected(command, message string) error {
	return bridge.NewCommandError(command, message)
}
