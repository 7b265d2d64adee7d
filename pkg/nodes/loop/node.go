// Package loop provides the loop nodes. They describe an iteration for downstream nodes; the
// executor does not repeat any part of the graph on their behalf.
package loop

import (
	"context"
	"fmt"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

const (
	DefaultItemVar       = "item"
	DefaultIndexVar      = "index"
	DefaultRepeatVar     = "i"
	DefaultMaxIterations = 100
)

// ForEachNode prepares iteration over the array config.
type ForEachNode struct{}

func NewForEachNode() *ForEachNode {
	return &ForEachNode{}
}

func (n *ForEachNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	items := nodeconfig.List(in.Data["array"])
	if items == nil {
		items = []any{}
	}

	itemVar := nodeconfig.String(in.Data, "itemVar", DefaultItemVar)
	indexVar := nodeconfig.String(in.Data, "indexVar", DefaultIndexVar)

	in.Logf(models.LogLevelInfo, fmt.Sprintf("For Each: %d items", len(items)))
	in.Logf(models.LogLevelInfo, fmt.Sprintf("Variables: %s, %s", itemVar, indexVar))

	return map[string]any{
		"items":    items,
		"itemVar":  itemVar,
		"indexVar": indexVar,
		"count":    len(items),
	}, nil
}

// RepeatNode prepares a fixed number of iterations.
type RepeatNode struct{}

func NewRepeatNode() *RepeatNode {
	return &RepeatNode{}
}

func (n *RepeatNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	count := nodeconfig.Int(in.Data, "count", 1)
	indexVar := nodeconfig.String(in.Data, "indexVar", DefaultRepeatVar)

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Repeat: %d times", count))

	return map[string]any{"count": count, "indexVar": indexVar}, nil
}

// WhileNode prepares a conditional loop bounded by maxIterations.
type WhileNode struct{}

func NewWhileNode() *WhileNode {
	return &WhileNode{}
}

func (n *WhileNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	maxIterations := nodeconfig.Int(in.Data, "maxIterations", DefaultMaxIterations)
	condition := in.Data["condition"]

	in.Logf(models.LogLevelInfo, fmt.Sprintf("While: %v", condition))
	in.Logf(models.LogLevelInfo, fmt.Sprintf("Max iterations: %d", maxIterations))

	return map[string]any{"condition": condition, "maxIterations": maxIterations}, nil
}
