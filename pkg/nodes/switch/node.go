// Package switchnode provides the multi-way branching node.
package switchnode

import (
	"context"
	"fmt"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
)

const OutputPortDefault = "default"

// SwitchNode returns the name of the branch to take. Without cases the value itself names the
// branch. With cases, the output port of the first case whose value matches is returned.
// Either way an empty or unmatched value yields "default".
type SwitchNode struct{}

// SwitchCase maps a value to an output port.
type SwitchCase struct {
	Value      string `json:"value"`
	OutputPort string `json:"output_port"`
}

// NewSwitchNode creates the handler of condition_switch.
func NewSwitchNode() *SwitchNode {
	return &SwitchNode{}
}

func (n *SwitchNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	value := ""
	if raw, ok := in.Data["value"]; ok && raw != nil {
		value = template.Stringify(raw)
	}

	in.Logf(models.LogLevelInfo, "Value: "+value)

	cases, err := parseCases(in.Data["cases"])
	if err != nil {
		return nil, err
	}

	branch := n.route(value, cases)

	in.Logf(models.LogLevelSuccess, "Taking branch: "+branch)

	return branch, nil
}

func (n *SwitchNode) route(value string, cases []SwitchCase) string {
	if value == "" {
		return OutputPortDefault
	}

	if len(cases) == 0 {
		return value
	}

	for _, c := range cases {
		if c.Value == value {
			return c.OutputPort
		}
	}

	return OutputPortDefault
}

func parseCases(raw any) ([]SwitchCase, error) {
	if raw == nil {
		return nil, nil
	}

	list := nodeconfig.List(raw)
	if list == nil {
		return nil, fmt.Errorf("cases must be a list, got %T", raw)
	}

	cases := make([]SwitchCase, 0, len(list))

	for i, item := range list {
		caseMap, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("case %d must be an object", i)
		}

		value := nodeconfig.String(caseMap, "value", "")
		if value == "" {
			return nil, fmt.Errorf("case %d missing 'value'", i)
		}

		cases = append(cases, SwitchCase{
			Value:      value,
			OutputPort: nodeconfig.String(caseMap, "output_port", value),
		})
	}

	return cases, nil
}
