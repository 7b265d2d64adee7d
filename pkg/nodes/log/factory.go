package log

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *LogNode) Type() models.NodeType {
	return models.NodeTypeActionLog
}

func (n *LogNode) Name() string {
	return "Log"
}

func (n *LogNode) Description() string {
	return "Writes a message to the execution log."
}

func (n *LogNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message to log. Supports {{placeholders}}.",
			},
			"level": map[string]any{
				"type":    "string",
				"enum":    []string{"info", "success", "warn", "error"},
				"default": "info",
			},
		},
		"required": []string{"message"},
	}
}

func (n *NotificationNode) Type() models.NodeType {
	return n.nodeType
}

func (n *NotificationNode) Name() string {
	if n.nodeType == models.NodeTypeOutputNotification {
		return "Final Notification"
	}

	return "Notification"
}

func (n *NotificationNode) Description() string {
	return "Sends a titled notification to the execution log."
}

func (n *NotificationNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":   map[string]any{"type": "string"},
			"message": map[string]any{"type": "string"},
		},
		"required": []string{"message"},
	}
}
