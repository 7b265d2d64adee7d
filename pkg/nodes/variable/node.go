// Package variable provides the node that writes a named variable into the run store.
package variable

import (
	"context"
	"errors"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
)

var ErrNameRequired = errors.New("variable name is required")

// SetVariableNode stores value under name so later nodes can reference {{name}}.
type SetVariableNode struct{}

func NewSetVariableNode() *SetVariableNode {
	return &SetVariableNode{}
}

func (n *SetVariableNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	name := nodeconfig.String(in.Data, "name", "")
	if name == "" {
		return nil, ErrNameRequired
	}

	value := in.Data["value"]

	in.Logf(models.LogLevelInfo, "Setting variable: "+name+" = "+nodeconfig.Truncate(template.Stringify(value), 50))

	if in.Variables != nil {
		in.Variables.Set(name, value)
	}

	return map[string]any{"name": name, "value": value}, nil
}

func (n *SetVariableNode) Type() models.NodeType {
	return models.NodeTypeActionSetVariable
}

func (n *SetVariableNode) Name() string {
	return "Set Variable"
}

func (n *SetVariableNode) Description() string {
	return "Stores a value in a named workflow variable."
}

func (n *SetVariableNode) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"value": map[string]any{},
		},
	}
}
