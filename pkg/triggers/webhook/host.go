// Package webhook routes incoming HTTP requests to the flows whose trigger_webhook node claims
// the request path. The HTTP server itself lives in pkg/web.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

const DefaultMethod = "POST"

var (
	ErrNoWebhook        = errors.New("no webhook registered for path")
	ErrPathTaken        = errors.New("webhook path already registered")
	ErrMethodNotAllowed = errors.New("method not allowed for webhook")
)

type handler struct {
	flowID   string
	nodeID   string
	method   string
	callback protocol.TriggerCallback
}

// Host is the webhook route table.
type Host struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[string]*handler
}

func NewHost(logger *slog.Logger) *Host {
	return &Host{
		logger:   logger.With("module", "webhook_trigger"),
		handlers: make(map[string]*handler),
	}
}

func (h *Host) Type() models.NodeType {
	return models.NodeTypeTriggerWebhook
}

// Register claims the node's path. An empty path defaults to /<flow id>.
func (h *Host) Register(ctx context.Context, flowID string, node models.Node, callback protocol.TriggerCallback) error {
	path := NormalizePath(nodeconfig.String(node.Config, "path", "/"+flowID))
	method := strings.ToUpper(nodeconfig.String(node.Config, "method", DefaultMethod))

	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.handlers[path]; ok && existing.flowID != flowID {
		return fmt.Errorf("%w: %s (flow %s)", ErrPathTaken, path, existing.flowID)
	}

	h.handlers[path] = &handler{flowID: flowID, nodeID: node.ID, method: method, callback: callback}
	h.logger.InfoContext(ctx, "Registered webhook handler", "path", path, "method", method, "flow_id", flowID)

	return nil
}

func (h *Host) Unregister(ctx context.Context, flowID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for path, registered := range h.handlers {
		if registered.flowID == flowID {
			delete(h.handlers, path)
			h.logger.InfoContext(ctx, "Unregistered webhook handler", "path", path, "flow_id", flowID)
		}
	}

	return nil
}

func (h *Host) Stop(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.handlers)

	return nil
}

// Dispatch fires the flow registered for path and returns its id.
func (h *Host) Dispatch(ctx context.Context, method, path string, payload map[string]any) (string, error) {
	path = NormalizePath(path)

	h.mu.RLock()
	registered, ok := h.handlers[path]
	h.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoWebhook, path)
	}

	if registered.method != "ANY" && !strings.EqualFold(registered.method, method) {
		return "", fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, method, path)
	}

	err := registered.callback(ctx, registered.flowID, payload)
	if err != nil {
		return registered.flowID, fmt.Errorf("failed to start flow %s: %w", registered.flowID, err)
	}

	return registered.flowID, nil
}

// Paths lists the registered paths.
func (h *Host) Paths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	paths := make([]string, 0, len(h.handlers))
	for path := range h.handlers {
		paths = append(paths, path)
	}

	return paths
}

// NormalizePath makes "hooks/a/" and "/hooks/a" the same route.
func NormalizePath(path string) string {
	return "/" + strings.Trim(strings.TrimSpace(path), "/")
}
