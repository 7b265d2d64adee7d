// Package conditional provides the two-way branching node.
package conditional

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgeflow/forgeflow/pkg/expression"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

const (
	OutputPortTrue  = "true"
	OutputPortFalse = "false"
)

// ConditionalNode evaluates its condition and returns a boolean. The engine follows the edge whose
// source handle matches "true" or "false".
type ConditionalNode struct{}

// NewConditionalNode creates the handler of condition_if.
func NewConditionalNode() *ConditionalNode {
	return &ConditionalNode{}
}

// Handle evaluates the resolved condition. Evaluation failures are logged and yield false.
func (n *ConditionalNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	result := n.evaluate(in)

	label := "FALSE"
	if result {
		label = "TRUE"
	}

	in.Logf(models.LogLevelSuccess, "Condition: "+label)

	return result, nil
}

func (n *ConditionalNode) evaluate(in protocol.Input) bool {
	condition, ok := in.Data["condition"].(string)
	if !ok {
		return expression.Truthy(in.Data["condition"])
	}

	in.Logf(models.LogLevelInfo, "Expression: "+condition)

	if strings.TrimSpace(condition) == "" {
		return false
	}

	var vars map[string]any
	if in.Variables != nil {
		vars = in.Variables.Snapshot()
	}

	result, err := expression.EvalBool(condition, vars)
	if err != nil {
		in.Logf(models.LogLevelError, fmt.Sprintf("Condition evaluation failed: %v", err))

		return false
	}

	return result
}
