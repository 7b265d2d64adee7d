package merge

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *MergeNode) Type() models.NodeType {
	return models.NodeTypeUtilMerge
}

func (n *MergeNode) Name() string {
	return "Merge"
}

func (n *MergeNode) Description() string {
	return "Combines values from several branches into one output."
}

func (n *MergeNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode": map[string]any{
				"type":    "string",
				"enum":    []string{MergeModeAll, MergeModeFirst, MergeModeCombine, MergeModeAppend},
				"default": MergeModeAll,
			},
			"inputs": map[string]any{
				"description": "Values to merge, usually {{node_<id>}} references",
			},
		},
	}
}
