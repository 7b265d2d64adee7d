// Package testutil provides test data builders for flows and graphs.
package testutil

import (
	"github.com/google/uuid"

	"github.com/forgeflow/forgeflow/pkg/models"
)

// CreateTestNode creates an action_log node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) models.Node {
	node := models.Node{
		ID:     uuid.New().String(),
		Type:   models.NodeTypeActionLog,
		Name:   "Test Node",
		Config: map[string]any{"message": "test", "level": "info"},
	}

	for _, override := range overrides {
		override(&node)
	}

	return node
}

// WithID sets the node ID.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithType sets the node type and clears the default log config.
func WithType(nodeType models.NodeType) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
		n.Config = map[string]any{}
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Config = config
	}
}

// WithDisabled marks the node as disabled.
func WithDisabled() func(*models.Node) {
	return func(n *models.Node) {
		if n.Config == nil {
			n.Config = map[string]any{}
		}

		n.Config[models.ConfigKeyDisabled] = true
	}
}

// WithWebhookTrigger turns the node into a trigger_webhook listening on path.
func WithWebhookTrigger(path string) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = models.NodeTypeTriggerWebhook
		n.Config = map[string]any{"path": path, "method": "POST"}
	}
}

// CreateTestConnection creates an edge between two nodes.
func CreateTestConnection(sourceNodeID, targetNodeID string) models.Edge {
	return models.Edge{
		ID:     uuid.New().String(),
		Source: sourceNodeID,
		Target: targetNodeID,
	}
}

// CreateTestFlow creates a flow with a manual trigger "start" followed by the given nodes in a chain.
func CreateTestFlow(id string, nodes ...models.Node) *models.Flow {
	start := CreateTestNode(WithID("start"), WithType(models.NodeTypeTriggerManual))

	return CreateTestFlowFrom(id, start, nodes...)
}

// CreateTestFlowFrom chains trigger and nodes into a linear flow.
func CreateTestFlowFrom(id string, trigger models.Node, nodes ...models.Node) *models.Flow {
	flow := &models.Flow{
		ID:          id,
		Name:        "Test Flow",
		Description: "A flow for testing",
		Variables:   map[string]any{"env": "test"},
		Graph:       models.Graph{Nodes: []models.Node{trigger}},
	}

	previous := trigger.ID
	for _, node := range nodes {
		flow.Graph.Nodes = append(flow.Graph.Nodes, node)
		flow.Graph.Edges = append(flow.Graph.Edges, CreateTestConnection(previous, node.ID))
		previous = node.ID
	}

	return flow
}
