// Package delay provides the node that pauses a run.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

const DefaultDuration = 1000

// DelayNode waits for duration milliseconds or until the run is cancelled.
type DelayNode struct{}

func NewDelayNode() *DelayNode {
	return &DelayNode{}
}

func (n *DelayNode) Handle(ctx context.Context, in protocol.Input) (any, error) {
	duration := nodeconfig.Int(in.Data, "duration", DefaultDuration)
	if duration < 0 {
		duration = 0
	}

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Waiting %dms...", duration))

	timer := time.NewTimer(time.Duration(duration) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	in.Logf(models.LogLevelSuccess, "Delay completed")

	return map[string]any{"delayed": duration}, nil
}

func (n *DelayNode) Type() models.NodeType {
	return models.NodeTypeActionDelay
}

func (n *DelayNode) Name() string {
	return "Delay"
}

func (n *DelayNode) Description() string {
	return "Pauses the workflow for a number of milliseconds."
}

func (n *DelayNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration": map[string]any{
				"type":        []string{"integer", "string"},
				"description": "Milliseconds to wait",
				"default":     DefaultDuration,
			},
		},
	}
}
