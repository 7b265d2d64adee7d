package workflow

import (
	"errors"
	"fmt"

	"github.com/forgeflow/forgeflow/pkg/models"
)

var (
	ErrNoEntryPoint   = errors.New("no entry point: every node has an incoming edge")
	ErrCycleDetected  = errors.New("cycle detected")
	ErrExecutionLimit = errors.New("node execution limit exceeded")
	ErrCancelled      = errors.New("execution cancelled")
	ErrHandlerPanic   = errors.New("node handler panicked")
)

// NodeError aborts a run. Err is the handler error, or ErrCycleDetected/ErrExecutionLimit when the
// engine refused to run the node.
type NodeError struct {
	NodeID   string
	NodeType models.NodeType
	Err      error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node '%s' (%s) failed: %v", e.NodeID, e.NodeType, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
