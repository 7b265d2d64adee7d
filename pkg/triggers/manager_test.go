package triggers_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/triggers"
)

type fakeHost struct {
	nodeType     models.NodeType
	registered   map[string][]models.Node
	unregistered []string
	stopped      bool
	failOn       string
}

func newFakeHost(nodeType models.NodeType) *fakeHost {
	return &fakeHost{nodeType: nodeType, registered: map[string][]models.Node{}}
}

func (h *fakeHost) Type() models.NodeType { return h.nodeType }

func (h *fakeHost) Register(_ context.Context, flowID string, node models.Node, _ protocol.TriggerCallback) error {
	if node.ID == h.failOn {
		return errors.New("rejected")
	}

	h.registered[flowID] = append(h.registered[flowID], node)

	return nil
}

func (h *fakeHost) Unregister(_ context.Context, flowID string) error {
	h.unregistered = append(h.unregistered, flowID)
	delete(h.registered, flowID)

	return nil
}

func (h *fakeHost) Stop(context.Context) error {
	h.stopped = true

	return nil
}

func scheduledFlow() *models.Flow {
	return &models.Flow{
		ID:        "nightly",
		Name:      "Nightly",
		Variables: map[string]any{"when": "0 2 * * *"},
		Graph: models.Graph{Nodes: []models.Node{
			{ID: "manual", Type: models.NodeTypeTriggerManual},
			{ID: "cron", Type: models.NodeTypeTriggerSchedule, Config: map[string]any{"cron": "{{when}}"}},
			{ID: "off", Type: models.NodeTypeTriggerSchedule, Config: map[string]any{"cron": "* * * * *", "disabled": true}},
			{ID: "hook", Type: models.NodeTypeTriggerWebhook},
			{ID: "work", Type: models.NodeTypeActionDelay},
		}},
	}
}

func TestManager_Sync(t *testing.T) {
	t.Parallel()

	schedule := newFakeHost(models.NodeTypeTriggerSchedule)
	manager := triggers.NewManager(slog.New(slog.DiscardHandler), nil, schedule)

	flow := scheduledFlow()
	require.NoError(t, manager.Sync(t.Context(), flow))

	nodes := schedule.registered["nightly"]
	require.Len(t, nodes, 1)
	assert.Equal(t, "cron", nodes[0].ID)
	assert.Equal(t, "0 2 * * *", nodes[0].Config["cron"])
	assert.Equal(t, "{{when}}", flow.Graph.Nodes[1].Config["cron"], "flow config must not be modified")

	require.NoError(t, manager.Sync(t.Context(), flow))
	assert.Equal(t, []string{"nightly"}, schedule.unregistered)
	assert.Len(t, schedule.registered["nightly"], 1)

	require.NoError(t, manager.Remove(t.Context(), "nightly"))
	assert.Empty(t, schedule.registered)

	require.NoError(t, manager.Stop(t.Context()))
	assert.True(t, schedule.stopped)
}

func TestManager_SyncReportsHostErrors(t *testing.T) {
	t.Parallel()

	schedule := newFakeHost(models.NodeTypeTriggerSchedule)
	schedule.failOn = "cron"
	manager := triggers.NewManager(slog.New(slog.DiscardHandler), nil, schedule)

	err := manager.Sync(t.Context(), scheduledFlow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node cron")

	manager.Load(t.Context(), []*models.Flow{scheduledFlow()})
}
