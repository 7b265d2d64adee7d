// Package trigger provides the handlers of trigger nodes. A trigger node marks where a run starts
// and exposes the payload its host observed.
package trigger

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

// PayloadVariable is the run variable trigger hosts seed with the payload that fired the run.
const PayloadVariable = "trigger"

// TriggerNode is the handler shared by all trigger types. Fields lists the config keys echoed
// into the output.
type TriggerNode struct {
	nodeType    models.NodeType
	name        string
	description string
	fields      []string
	schema      map[string]any
}

// Handle reports the trigger as fired and exposes the host payload, if any, under "payload". A file
// watch trigger also reports "event" (the observed event, else its configured events) and a queue
// trigger "message" (the text message, else the decoded object).
func (n *TriggerNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	output := map[string]any{
		"triggered": true,
		"timestamp": time.Now().UnixMilli(),
	}

	for _, field := range n.fields {
		output[field] = in.Data[field]
	}

	var payload map[string]any

	if in.Variables != nil {
		if value, ok := in.Variables.Get(PayloadVariable); ok {
			payload, _ = value.(map[string]any)
		}
	}

	if payload != nil {
		output["payload"] = maps.Clone(payload)
	}

	switch n.nodeType {
	case models.NodeTypeTriggerFileWatch:
		output["event"] = in.Data["events"]
		if event, ok := payload["event"]; ok {
			output["event"] = event
		}
	case models.NodeTypeTriggerQueue:
		output["message"] = nil
		if message, ok := payload["message"]; ok {
			output["message"] = message
		} else if payload != nil {
			output["message"] = maps.Clone(payload)
		}
	}

	in.Logf(models.LogLevelInfo, n.describe(in.Data))

	return output, nil
}

func (n *TriggerNode) describe(data map[string]any) string {
	switch n.nodeType {
	case models.NodeTypeTriggerSchedule:
		return "Schedule: " + nodeconfig.String(data, "cron", "")
	case models.NodeTypeTriggerWebhook:
		return fmt.Sprintf("Webhook: %s %s", nodeconfig.String(data, "method", "POST"), nodeconfig.String(data, "path", "/"))
	case models.NodeTypeTriggerFileWatch:
		return fmt.Sprintf("Watching: %s (%s)", nodeconfig.String(data, "path", ""), nodeconfig.String(data, "events", "all"))
	case models.NodeTypeTriggerQueue:
		return "Queue: " + nodeconfig.String(data, "queue", "")
	default:
		return "Manual trigger activated"
	}
}

func (n *TriggerNode) Type() models.NodeType {
	return n.nodeType
}

func (n *TriggerNode) Name() string {
	return n.name
}

func (n *TriggerNode) Description() string {
	return n.description
}

func (n *TriggerNode) Schema() map[string]any {
	return n.schema
}
