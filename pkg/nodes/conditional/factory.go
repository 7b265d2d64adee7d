package conditional

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *ConditionalNode) Type() models.NodeType {
	return models.NodeTypeConditionIf
}

func (n *ConditionalNode) Name() string {
	return "If / Else"
}

func (n *ConditionalNode) Description() string {
	return "Evaluates a condition and routes execution to the true or false branch."
}

// Schema returns the JSON schema for the condition config.
func (n *ConditionalNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"condition": map[string]any{
				"type":        []string{"string", "boolean", "number"},
				"description": "Expression over literals and run variables. Comparison, arithmetic and boolean operators are supported.",
				"examples": []string{
					`{{output}} > 5`,
					`output.status == "active"`,
					`node_fetch.count >= 10 && !node_fetch.empty`,
					`length(result) > 0`,
				},
			},
		},
		"required": []string{"condition"},
	}
}
