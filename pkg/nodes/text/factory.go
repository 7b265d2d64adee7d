package text

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *StringNode) Type() models.NodeType { return models.NodeTypeUtilString }
func (n *StringNode) Name() string          { return "String" }
func (n *StringNode) Description() string {
	return "Changes case, pads, splits, replaces or cuts text."
}
func (n *StringNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string", "description": "Defaults to the previous node output"},
			"mode": map[string]any{
				"type": "string",
				"enum": []string{
					"lower", "upper", "title", "camel", "snake", "kebab", "trim",
					"padStart", "padEnd", "split", "replace", "substring",
				},
				"default": "lower",
			},
			"length":      map[string]any{"type": []string{"integer", "string"}},
			"char":        map[string]any{"type": "string"},
			"delimiter":   map[string]any{"type": "string"},
			"replacement": map[string]any{"type": "string"},
			"start":       map[string]any{"type": []string{"integer", "string"}},
		},
	}
}

func (n *GenerateNode) Type() models.NodeType { return models.NodeTypeUtilGenerate }
func (n *GenerateNode) Name() string          { return "Generate" }
func (n *GenerateNode) Description() string {
	return "Generates a UUID, a random number or a random string."
}
func (n *GenerateNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode":   map[string]any{"type": "string", "enum": []string{"uuid", "number", "string"}, "default": "uuid"},
			"min":    map[string]any{"type": []string{"integer", "string"}, "default": 0},
			"max":    map[string]any{"type": []string{"integer", "string"}, "default": 100},
			"length": map[string]any{"type": []string{"integer", "string"}, "default": 8},
		},
	}
}
