// Package registry maps node types to the handlers that execute them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrInvalidConfig   = errors.New("invalid node config")
)

// Descriptor describes a node type for catalogs and validation output.
type Descriptor struct {
	Type        models.NodeType `json:"type"`
	Category    models.Category `json:"category"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Schema      map[string]any  `json:"schema,omitempty"`
	Registered  bool            `json:"registered"`
}

// Registry is the dispatch table of the engine. Only declared node types can be registered.
type Registry struct {
	base     *slog.Logger
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[models.NodeType]protocol.Handler
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		base:     log,
		logger:   log.With("module", "registry"),
		handlers: make(map[models.NodeType]protocol.Handler),
	}
}

// Register binds handler to nodeType, replacing any previous handler.
func (r *Registry) Register(nodeType models.NodeType, handler protocol.Handler) error {
	if !nodeType.Valid() {
		return fmt.Errorf("%w: '%s'", ErrUnknownNodeType, nodeType)
	}

	if handler == nil {
		return fmt.Errorf("handler for node type '%s' is nil", nodeType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[nodeType]; exists {
		r.logger.Debug("Replacing handler", "node_type", nodeType)
	}

	r.handlers[nodeType] = handler

	return nil
}

// RegisterNode registers a self-describing handler under its own type.
func (r *Registry) RegisterNode(handler protocol.NodeHandler) error {
	return r.Register(handler.Type(), handler)
}

// RegisterFunc registers a plain function as the handler of nodeType.
func (r *Registry) RegisterFunc(nodeType models.NodeType, fn func(ctx context.Context, in protocol.Input) (any, error)) error {
	return r.Register(nodeType, protocol.HandlerFunc(fn))
}

// Lookup returns the handler registered for nodeType.
func (r *Registry) Lookup(nodeType models.NodeType) (protocol.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[nodeType]

	return handler, ok
}

// Types returns the registered node types in declaration order.
func (r *Registry) Types() []models.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []models.NodeType

	for _, nodeType := range models.NodeTypes() {
		if _, ok := r.handlers[nodeType]; ok {
			types = append(types, nodeType)
		}
	}

	return types
}

// Missing returns the declared node types that have no handler.
func (r *Registry) Missing() []models.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []models.NodeType

	for _, nodeType := range models.NodeTypes() {
		if _, ok := r.handlers[nodeType]; !ok {
			missing = append(missing, nodeType)
		}
	}

	return missing
}

// Descriptors returns a descriptor for every declared node type.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(models.NodeTypes()))

	for _, nodeType := range models.NodeTypes() {
		descriptor := Descriptor{
			Type:     nodeType,
			Category: nodeType.Category(),
		}

		handler, ok := r.handlers[nodeType]
		descriptor.Registered = ok

		if described, ok := handler.(protocol.NodeHandler); ok {
			descriptor.Name = described.Name()
			descriptor.Description = described.Description()
			descriptor.Schema = described.Schema()
		}

		descriptors = append(descriptors, descriptor)
	}

	return descriptors
}

// ValidateConfig checks config against the schema of the handler registered for nodeType.
// Handlers without a schema accept any config.
func (r *Registry) ValidateConfig(nodeType models.NodeType, config map[string]any) error {
	if !nodeType.Valid() {
		return fmt.Errorf("%w: '%s'", ErrUnknownNodeType, nodeType)
	}

	handler, ok := r.Lookup(nodeType)
	if !ok {
		return nil
	}

	described, ok := handler.(protocol.NodeHandler)
	if !ok || described.Schema() == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(described.Schema()),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate config for '%s': %w", nodeType, err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}

	return fmt.Errorf("%w for '%s': %s", ErrInvalidConfig, nodeType, strings.Join(details, "; "))
}
