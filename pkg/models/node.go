// Package models defines the graph, result and execution models shared by the engine and its hosts.
package models

// Category groups node types the way the node palette does.
type Category string

const (
	CategoryTrigger   Category = "trigger"
	CategoryCondition Category = "condition"
	CategoryAction    Category = "action"
	CategoryAI        Category = "ai"
	CategoryLoop      Category = "loop"
	CategoryUtility   Category = "utility"
	CategoryOutput    Category = "output"
)

// ConfigKeyDisabled marks a node as disabled when set to true in its config.
const ConfigKeyDisabled = "disabled"

// Node is a unit of work in a graph. Config is unresolved and may hold {{placeholders}}.
type Node struct {
	ID       string         `json:"id"                 yaml:"id"                 validate:"required"`
	Type     NodeType       `json:"type"               yaml:"type"               validate:"required"`
	Category Category       `json:"category,omitempty" yaml:"category,omitempty"`
	Name     string         `json:"name,omitempty"     yaml:"name,omitempty"`
	Config   map[string]any `json:"config,omitempty"   yaml:"config,omitempty"`
}

// Disabled reports whether the node carries an explicit disabled flag.
func (n *Node) Disabled() bool {
	disabled, ok := n.Config[ConfigKeyDisabled].(bool)

	return ok && disabled
}

// ResolvedCategory returns the declared category, falling back to the category of the node type.
func (n *Node) ResolvedCategory() Category {
	if n.Category != "" {
		return n.Category
	}

	return n.Type.Category()
}

// Edge is a directed connection. SourceHandle names the output port of a branching node.
type Edge struct {
	ID           string `json:"id"                      yaml:"id"`
	Source       string `json:"source"                  yaml:"source"                  validate:"required"`
	Target       string `json:"target"                  yaml:"target"                  validate:"required"`
	SourceHandle string `json:"source_handle,omitempty" yaml:"source_handle,omitempty"`
}
