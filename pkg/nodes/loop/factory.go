package loop

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *ForEachNode) Type() models.NodeType { return models.NodeTypeLoopForEach }
func (n *ForEachNode) Name() string          { return "For Each" }
func (n *ForEachNode) Description() string   { return "Prepares iteration over the items of an array." }
func (n *ForEachNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"array":    map[string]any{"type": []string{"array", "string"}},
			"itemVar":  map[string]any{"type": "string", "default": DefaultItemVar},
			"indexVar": map[string]any{"type": "string", "default": DefaultIndexVar},
		},
	}
}

func (n *RepeatNode) Type() models.NodeType { return models.NodeTypeLoopRepeat }
func (n *RepeatNode) Name() string          { return "Repeat" }
func (n *RepeatNode) Description() string   { return "Prepares a fixed number of iterations." }
func (n *RepeatNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count":    map[string]any{"type": []string{"integer", "string"}, "default": 1},
			"indexVar": map[string]any{"type": "string", "default": DefaultRepeatVar},
		},
	}
}

func (n *WhileNode) Type() models.NodeType { return models.NodeTypeLoopWhile }
func (n *WhileNode) Name() string          { return "While" }
func (n *WhileNode) Description() string   { return "Prepares a loop that runs while a condition holds." }
func (n *WhileNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"condition":     map[string]any{"type": "string"},
			"maxIterations": map[string]any{"type": []string{"integer", "string"}, "default": DefaultMaxIterations},
		},
	}
}
