package switchnode

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *SwitchNode) Type() models.NodeType {
	return models.NodeTypeConditionSwitch
}

func (n *SwitchNode) Name() string {
	return "Switch"
}

func (n *SwitchNode) Description() string {
	return "Routes execution to the branch named by a value, with a default branch."
}

func (n *SwitchNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{
				"description": "Value naming the branch to take",
			},
			"cases": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"value":       map[string]any{"type": "string"},
						"output_port": map[string]any{"type": "string"},
					},
					"required": []string{"value"},
				},
			},
		},
	}
}
