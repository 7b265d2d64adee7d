// Package protocol defines the contract node handlers implement.
package protocol

import (
	"context"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/variables"
)

// LogFunc emits a user-facing trace line for the node being executed.
type LogFunc func(level models.LogLevel, message string)

// Input is what a handler receives for one node execution.
type Input struct {
	NodeID   string
	NodeType models.NodeType
	// Data is the node config with every placeholder resolved.
	Data map[string]any
	// Variables is the live run store. Handlers may write to it.
	Variables *variables.Store
	Log       LogFunc
}

// Logf is a convenience that tolerates a nil Log.
func (in Input) Logf(level models.LogLevel, message string) {
	if in.Log != nil {
		in.Log(level, message)
	}
}

// Handler executes one node type. A returned error marks the node failed and aborts the run;
// its message is recorded verbatim.
type Handler interface {
	Handle(ctx context.Context, in Input) (any, error)
}

// NodeHandler is a Handler that also describes the node type it serves.
type NodeHandler interface {
	Handler

	// Type returns the node type this handler is dispatched for
	Type() models.NodeType

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for configuring this node
	Schema() map[string]any
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, in Input) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, in Input) (any, error) {
	return f(ctx, in)
}
