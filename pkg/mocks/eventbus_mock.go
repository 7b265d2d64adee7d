package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/forgeflow/forgeflow/pkg/eventbus"
	"github.com/forgeflow/forgeflow/pkg/events"
)

// MockEventBus is a mock implementation of eventbus.Bus.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, flowID string, event eventbus.Event) error {
	args := m.Called(ctx, flowID, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.Handler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}
