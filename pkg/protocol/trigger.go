package protocol

import (
	"context"

	"github.com/forgeflow/forgeflow/pkg/models"
)

// TriggerCallback starts a run of a flow with the payload a trigger host observed.
type TriggerCallback func(ctx context.Context, flowID string, payload map[string]any) error

// TriggerHost turns trigger nodes of a given type into run requests.
type TriggerHost interface {
	// Type returns the trigger node type the host serves
	Type() models.NodeType

	// Register starts firing callback for the trigger node of flowID
	Register(ctx context.Context, flowID string, node models.Node, callback TriggerCallback) error

	// Unregister stops every trigger of flowID
	Unregister(ctx context.Context, flowID string) error

	// Stop releases all resources held by the host
	Stop(ctx context.Context) error
}
