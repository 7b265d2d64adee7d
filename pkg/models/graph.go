package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrDuplicateNodeID = errors.New("duplicate node id")

// Graph is the run-time shape of a flow: nodes plus the edges between them.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" yaml:"edges" validate:"dive"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}

	return nil, false
}

// Normalize drops edges whose source or target is not a node of the graph and returns them.
func (g *Graph) Normalize() []Edge {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, node := range g.Nodes {
		ids[node.ID] = struct{}{}
	}

	kept := make([]Edge, 0, len(g.Edges))

	var dropped []Edge

	for _, edge := range g.Edges {
		_, hasSource := ids[edge.Source]
		_, hasTarget := ids[edge.Target]

		if hasSource && hasTarget {
			kept = append(kept, edge)
		} else {
			dropped = append(dropped, edge)
		}
	}

	g.Edges = kept

	return dropped
}

// EntryPoints returns the ids of nodes no edge targets, in node-list order.
func (g *Graph) EntryPoints() []string {
	targeted := make(map[string]struct{}, len(g.Edges))
	for _, edge := range g.Edges {
		targeted[edge.Target] = struct{}{}
	}

	var entries []string

	for _, node := range g.Nodes {
		if _, ok := targeted[node.ID]; !ok {
			entries = append(entries, node.ID)
		}
	}

	return entries
}

// Outgoing returns the edges leaving nodeID in edge-list order.
func (g *Graph) Outgoing(nodeID string) []Edge {
	var out []Edge

	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			out = append(out, edge)
		}
	}

	return out
}

// Validate checks struct constraints and node id uniqueness.
func (g *Graph) Validate(validate *validator.Validate) error {
	if err := validate.Struct(g); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(g.Nodes))
	for _, node := range g.Nodes {
		if _, ok := seen[node.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
		}

		seen[node.ID] = struct{}{}
	}

	return nil
}
