package collection

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *ArrayNode) Type() models.NodeType { return models.NodeTypeUtilArray }
func (n *ArrayNode) Name() string          { return "Array" }
func (n *ArrayNode) Description() string {
	return "Counts, slices, sorts, maps or reshapes a list."
}
func (n *ArrayNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"array": map[string]any{
				"type":        []string{"array", "string"},
				"description": "Defaults to the previous node output",
			},
			"mode": map[string]any{
				"type": "string",
				"enum": []string{
					"length", "push", "slice", "join", "map", "sort",
					"reverse", "unique", "flatten", "first", "last",
				},
				"default": "length",
			},
			"item":      map[string]any{},
			"start":     map[string]any{"type": []string{"integer", "string"}},
			"end":       map[string]any{"type": []string{"integer", "string"}},
			"separator": map[string]any{"type": "string", "default": DefaultSeparator},
			"field":     map[string]any{"type": "string"},
			"order":     map[string]any{"type": "string", "enum": []string{"asc", "desc"}},
		},
	}
}

func (n *FieldNode) Type() models.NodeType { return models.NodeTypeUtilField }
func (n *FieldNode) Name() string          { return "Field" }
func (n *FieldNode) Description() string {
	return "Reads or sets a field on the previous node output."
}
func (n *FieldNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode":  map[string]any{"type": "string", "enum": []string{FieldModeGet, FieldModeSet}, "default": FieldModeGet},
			"path":  map[string]any{"type": "string"},
			"value": map[string]any{},
		},
	}
}
