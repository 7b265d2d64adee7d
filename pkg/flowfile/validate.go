package flowfile

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/registry"
)

var (
	ErrNoEntryPoint   = errors.New("graph has no entry point")
	ErrDanglingEdge   = errors.New("edge references an unknown node")
	ErrUnknownHandler = errors.New("no handler registered")
)

// Issue is one validation finding. Warnings do not make a flow invalid.
type Issue struct {
	NodeID  string `json:"node_id,omitempty"`
	Warning bool   `json:"warning,omitempty"`
	Err     error  `json:"-"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	prefix := "error"
	if i.Warning {
		prefix = "warning"
	}

	if i.NodeID != "" {
		return fmt.Sprintf("%s: node %s: %s", prefix, i.NodeID, i.Message)
	}

	return fmt.Sprintf("%s: %s", prefix, i.Message)
}

// Validator checks flows structurally and each node config against its handler schema.
type Validator struct {
	validate *validator.Validate
	registry *registry.Registry
}

func NewValidator(validate *validator.Validate, reg *registry.Registry) *Validator {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	return &Validator{validate: validate, registry: reg}
}

// Check returns every issue found in flow. Dangling edges and missing handlers are warnings
// because the executor tolerates them.
func (v *Validator) Check(flow *models.Flow) []Issue {
	var issues []Issue

	fail := func(nodeID string, err error) {
		issues = append(issues, Issue{NodeID: nodeID, Err: err, Message: err.Error()})
	}
	warn := func(nodeID string, err error) {
		issues = append(issues, Issue{NodeID: nodeID, Warning: true, Err: err, Message: err.Error()})
	}

	if err := v.validate.StructExcept(flow, "Graph"); err != nil {
		fail("", err)
	}

	if err := flow.Graph.Validate(v.validate); err != nil {
		fail("", err)
	}

	ids := make(map[string]struct{}, len(flow.Graph.Nodes))
	for _, node := range flow.Graph.Nodes {
		ids[node.ID] = struct{}{}
	}

	for _, edge := range flow.Graph.Edges {
		_, hasSource := ids[edge.Source]
		_, hasTarget := ids[edge.Target]

		if !hasSource || !hasTarget {
			warn("", fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, edge.Source, edge.Target))
		}
	}

	graph := models.Graph{Nodes: flow.Graph.Nodes, Edges: append([]models.Edge(nil), flow.Graph.Edges...)}
	graph.Normalize()

	if len(flow.Graph.Nodes) > 0 && len(graph.EntryPoints()) == 0 {
		fail("", ErrNoEntryPoint)
	}

	for _, node := range flow.Graph.Nodes {
		if node.Type == "" {
			continue
		}

		if !node.Type.Valid() {
			fail(node.ID, fmt.Errorf("%w: '%s'", registry.ErrUnknownNodeType, node.Type))

			continue
		}

		if v.registry == nil {
			continue
		}

		if _, ok := v.registry.Lookup(node.Type); !ok {
			warn(node.ID, fmt.Errorf("%w for '%s'", ErrUnknownHandler, node.Type))

			continue
		}

		if err := v.registry.ValidateConfig(node.Type, node.Config); err != nil {
			fail(node.ID, err)
		}
	}

	return issues
}

// Validate joins the non-warning issues of flow into one error, or returns nil.
func (v *Validator) Validate(flow *models.Flow) error {
	var errs []error

	for _, issue := range v.Check(flow) {
		if issue.Warning {
			continue
		}

		if issue.NodeID != "" {
			errs = append(errs, fmt.Errorf("node %s: %w", issue.NodeID, issue.Err))
		} else {
			errs = append(errs, issue.Err)
		}
	}

	return errors.Join(errs...)
}
