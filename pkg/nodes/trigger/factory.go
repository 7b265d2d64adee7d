package trigger

import (
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

// NewManualTriggerNode creates the handler of trigger_manual.
func NewManualTriggerNode() protocol.NodeHandler {
	return &TriggerNode{
		nodeType:    models.NodeTypeTriggerManual,
		name:        "Manual Trigger",
		description: "Starts the flow when it is run by hand.",
		schema: map[string]any{
			"type": "object",
		},
	}
}

// NewScheduleTriggerNode creates the handler of trigger_schedule.
func NewScheduleTriggerNode() protocol.NodeHandler {
	return &TriggerNode{
		nodeType:    models.NodeTypeTriggerSchedule,
		name:        "Schedule",
		description: "Starts the flow on a cron schedule.",
		fields:      []string{"cron"},
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cron": map[string]any{
					"type":        "string",
					"description": "Standard five field cron expression",
					"examples":    []string{"*/5 * * * *", "0 9 * * 1-5"},
				},
			},
			"required": []string{"cron"},
		},
	}
}

// NewWebhookTriggerNode creates the handler of trigger_webhook.
func NewWebhookTriggerNode() protocol.NodeHandler {
	return &TriggerNode{
		nodeType:    models.NodeTypeTriggerWebhook,
		name:        "Webhook",
		description: "Starts the flow when an HTTP request hits the configured path.",
		fields:      []string{"method", "path"},
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"method": map[string]any{
					"type": "string",
					"enum": []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
				},
				"path": map[string]any{
					"type":        "string",
					"description": "Path under /hooks the flow listens on",
				},
			},
			"required": []string{"path"},
		},
	}
}

// NewFileWatchTriggerNode creates the handler of trigger_file_watch.
func NewFileWatchTriggerNode() protocol.NodeHandler {
	return &TriggerNode{
		nodeType:    models.NodeTypeTriggerFileWatch,
		name:        "File Watch",
		description: "Starts the flow when files under a path change.",
		fields:      []string{"path", "events"},
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string"},
				"events": map[string]any{
					"type": "string",
					"enum": []string{"all", "create", "modify", "delete"},
				},
			},
			"required": []string{"path"},
		},
	}
}

// NewQueueTriggerNode creates the handler of trigger_queue.
func NewQueueTriggerNode() protocol.NodeHandler {
	return &TriggerNode{
		nodeType:    models.NodeTypeTriggerQueue,
		name:        "Queue",
		description: "Starts the flow for every message popped from a Redis list.",
		fields:      []string{"queue"},
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"queue": map[string]any{"type": "string"},
				"addr":  map[string]any{"type": "string"},
				"db":    map[string]any{"type": []string{"integer", "string"}},
			},
			"required": []string{"queue"},
		},
	}
}
