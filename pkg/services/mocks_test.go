package services

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/pkg/mocks"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/testutil"
)

func TestFlow_HealthCheckUnhealthy(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	message, healthy := NewFlow(store, nil).HealthCheck(t.Context())
	assert.False(t, healthy)
	assert.Equal(t, "Persistence layer is unhealthy: connection refused", message)
	store.AssertExpectations(t)
}

func TestFlow_CreateSaveFailure(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("SaveFlow", mock.Anything, mock.AnythingOfType("*models.Flow")).Return(errors.New("disk full"))

	_, err := NewFlow(store, nil).Create(t.Context(), testutil.CreateTestFlow("broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, IsValidationError(err))
}

// Storage and publishing failures are logged; the run itself still completes.
func TestExecutions_RunWithFailingCollaborators(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("SaveExecution", mock.Anything, mock.AnythingOfType("*models.FlowExecution")).Return(errors.New("unavailable"))

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "mocked", mock.Anything).Return(errors.New("broker down"))

	reg := newTestRegistry(t)
	service := NewExecutions(slog.New(slog.DiscardHandler), reg, WithPersistence(store), WithPublisher(bus))

	flow := testutil.CreateTestFlow("mocked", testutil.CreateTestNode(testutil.WithID("say")))

	record, err := service.Run(t.Context(), flow, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, record.Status)

	store.AssertCalled(t, "SaveExecution", mock.Anything, mock.AnythingOfType("*models.FlowExecution"))
	bus.AssertCalled(t, "Publish", mock.Anything, "mocked", mock.Anything)
}
