package models

import "time"

// Flow is a stored automation: a graph plus the variables every run is seeded with.
type Flow struct {
	ID          string         `json:"id"                    yaml:"id"`
	Name        string         `json:"name"                  yaml:"name"                  validate:"required,min=1"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Graph       Graph          `json:"graph"                 yaml:"graph"`
	Variables   map[string]any `json:"variables,omitempty"   yaml:"variables,omitempty"`
	CreatedAt   time.Time      `json:"created_at"            yaml:"-"`
	UpdatedAt   time.Time      `json:"updated_at"            yaml:"-"`
}

// TriggerNodes returns the enabled trigger nodes of the flow.
func (f *Flow) TriggerNodes() []Node {
	var triggers []Node

	for _, node := range f.Graph.Nodes {
		if node.ResolvedCategory() == CategoryTrigger && !node.Disabled() {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// ExecutionStatus is the lifecycle state of a flow execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusSuccess   ExecutionStatus = "success"
	ExecutionStatusError     ExecutionStatus = "error"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// FlowExecution is the persisted record of one run.
type FlowExecution struct {
	ID        string          `json:"id"`
	FlowID    string          `json:"flow_id"`
	Status    ExecutionStatus `json:"status"`
	Results   []NodeResult    `json:"results"`
	Logs      []LogEntry      `json:"logs,omitempty"`
	Trigger   map[string]any  `json:"trigger,omitempty"`
	Error     string          `json:"error,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
}

// Finished reports whether the execution reached a terminal status.
func (e *FlowExecution) Finished() bool {
	return e.Status != ExecutionStatusRunning
}
