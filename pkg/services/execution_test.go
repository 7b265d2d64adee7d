package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/pkg/eventbus"
	"github.com/forgeflow/forgeflow/pkg/events"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/persistence/file"
	"github.com/forgeflow/forgeflow/pkg/registry"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EventType
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event.GetType())

	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]events.EventType(nil), p.events...)
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.NewRegistry(slog.New(slog.DiscardHandler))
	require.NoError(t, reg.RegisterDefaultNodes())

	return reg
}

func newTestExecutions(t *testing.T) (*Executions, *file.Persistence, *recordingPublisher) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	publisher := &recordingPublisher{}

	service := NewExecutions(slog.New(slog.DiscardHandler), newTestRegistry(t),
		WithPersistence(store),
		WithPublisher(publisher),
	)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = service.Shutdown(ctx)
	})

	return service, store, publisher
}

func linearFlow(id string, second models.Node) *models.Flow {
	return &models.Flow{
		ID:   id,
		Name: "Flow " + id,
		Graph: models.Graph{
			Nodes: []models.Node{{ID: "start", Type: models.NodeTypeTriggerManual}, second},
			Edges: []models.Edge{{ID: "e1", Source: "start", Target: second.ID}},
		},
		Variables: map[string]any{"who": "Ada"},
	}
}

func TestExecutions_Run(t *testing.T) {
	t.Parallel()

	service, store, publisher := newTestExecutions(t)
	flow := linearFlow("greet", models.Node{
		ID:     "set",
		Type:   models.NodeTypeActionSetVariable,
		Config: map[string]any{"name": "greeting", "value": "Hello {{who}}"},
	})
	require.NoError(t, store.SaveFlow(t.Context(), flow))

	record, err := service.Run(t.Context(), flow, map[string]any{"source": "test"})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusSuccess, record.Status)
	assert.Equal(t, "greet", record.FlowID)
	require.NotNil(t, record.EndedAt)
	require.Len(t, record.Results, 2)
	assert.NotEmpty(t, record.Logs)

	triggerOutput, ok := record.Results[0].Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"source": "test"}, triggerOutput["payload"])

	setOutput, ok := record.Results[1].Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hello Ada", setOutput["value"])

	stored, err := service.Get(t.Context(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, stored.Status)

	list, err := service.List(t.Context(), "greet")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, record.ID, list[0].ID)

	types := publisher.types()
	require.GreaterOrEqual(t, len(types), 3)
	assert.Equal(t, events.ExecutionStartedEvent, types[0])
	assert.Equal(t, events.ExecutionFinishedEvent, types[len(types)-1])
	assert.Contains(t, types, events.ExecutionProgressEvent)
}

func TestExecutions_RunFailure(t *testing.T) {
	t.Parallel()

	service, store, _ := newTestExecutions(t)
	flow := linearFlow("broken", models.Node{ID: "shell", Type: models.NodeTypeActionShell})
	require.NoError(t, store.SaveFlow(t.Context(), flow))

	record, err := service.Run(t.Context(), flow, nil)
	require.Error(t, err)

	assert.Equal(t, models.ExecutionStatusError, record.Status)
	assert.NotEmpty(t, record.Error)
	assert.Equal(t, models.NodeStatusError, record.Results[1].Status)
}

func TestExecutions_StartAndStop(t *testing.T) {
	t.Parallel()

	service, store, _ := newTestExecutions(t)
	flow := linearFlow("slow", models.Node{
		ID:     "wait",
		Type:   models.NodeTypeActionDelay,
		Config: map[string]any{"duration": 10000},
	})
	require.NoError(t, store.SaveFlow(t.Context(), flow))

	record, err := service.Start(t.Context(), flow, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, record.Status)

	require.Eventually(t, func() bool {
		live, err := service.Get(t.Context(), record.ID)

		return err == nil && len(live.Results) == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, service.Stop(t.Context(), record.ID))

	require.Eventually(t, func() bool {
		stored, err := store.Execution(t.Context(), record.ID)

		return err == nil && stored.Finished()
	}, 5*time.Second, 10*time.Millisecond)

	stored, err := service.Get(t.Context(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCancelled, stored.Status)

	err = service.Stop(t.Context(), record.ID)
	assert.ErrorIs(t, err, ErrExecutionNotRunning)
	assert.True(t, IsConflictError(err))
}

func TestExecutions_StopUnknown(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestExecutions(t)

	err := service.Stop(t.Context(), "missing")
	assert.True(t, IsNotFoundError(err))
}

func TestExecutions_NilFlow(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestExecutions(t)

	_, err := service.Run(t.Context(), nil, nil)
	assert.ErrorIs(t, err, ErrFlowNil)

	_, err = service.Start(t.Context(), nil, nil)
	assert.True(t, IsValidationError(err))
}
