// Package merge provides the node that combines values produced by several branches.
package merge

import (
	"context"
	"fmt"
	"maps"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

const (
	MergeModeAll     = "all"
	MergeModeFirst   = "first"
	MergeModeCombine = "combine"
	MergeModeAppend  = "append"
)

// MergeNode combines the values listed in its inputs config, typically node outputs referenced
// with {{node_<id>}} placeholders.
type MergeNode struct{}

// NewMergeNode creates the handler of util_merge.
func NewMergeNode() *MergeNode {
	return &MergeNode{}
}

func (n *MergeNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	mode := nodeconfig.String(in.Data, "mode", MergeModeAll)
	inputs := nodeconfig.List(in.Data["inputs"])

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Merge: %s (%d inputs)", mode, len(inputs)))

	switch mode {
	case MergeModeAll:
		return map[string]any{"mode": mode, "inputs": nonNil(inputs)}, nil
	case MergeModeFirst:
		for _, input := range inputs {
			if input != nil {
				return input, nil
			}
		}

		return nil, nil
	case MergeModeCombine:
		combined := make(map[string]any)

		for i, input := range inputs {
			object, ok := input.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("merge input %d is not an object", i)
			}

			maps.Copy(combined, object)
		}

		return combined, nil
	case MergeModeAppend:
		var appended []any

		for _, input := range inputs {
			if list := nodeconfig.List(input); list != nil {
				appended = append(appended, list...)
			} else if input != nil {
				appended = append(appended, input)
			}
		}

		if appended == nil {
			appended = []any{}
		}

		return appended, nil
	default:
		return nil, fmt.Errorf("unknown merge mode: %s", mode)
	}
}

func nonNil(values []any) []any {
	out := make([]any, 0, len(values))

	for _, value := range values {
		if value != nil {
			out = append(out, value)
		}
	}

	return out
}
