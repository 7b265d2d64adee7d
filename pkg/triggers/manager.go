// Package triggers binds the trigger nodes of stored flows to the hosts that fire them.
package triggers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
)

// Manager keeps, per flow, the hosts its trigger nodes are registered with.
type Manager struct {
	hosts        map[models.NodeType]protocol.TriggerHost
	callback     protocol.TriggerCallback
	interpolator *template.Interpolator
	logger       *slog.Logger

	mu         sync.Mutex
	registered map[string][]protocol.TriggerHost
}

func NewManager(logger *slog.Logger, callback protocol.TriggerCallback, hosts ...protocol.TriggerHost) *Manager {
	m := &Manager{
		hosts:        make(map[models.NodeType]protocol.TriggerHost, len(hosts)),
		callback:     callback,
		interpolator: template.NewInterpolator(logger),
		logger:       logger.With("module", "trigger_manager"),
		registered:   make(map[string][]protocol.TriggerHost),
	}

	for _, host := range hosts {
		m.hosts[host.Type()] = host
	}

	return m
}

// Load syncs every flow, logging the flows whose triggers could not be registered.
func (m *Manager) Load(ctx context.Context, flows []*models.Flow) {
	for _, flow := range flows {
		if err := m.Sync(ctx, flow); err != nil {
			m.logger.ErrorContext(ctx, "Failed to register flow triggers", "flow_id", flow.ID, "error", err)
		}
	}
}

// Sync replaces the registrations of flow with its current enabled trigger nodes. Trigger config
// placeholders are resolved against the flow variables.
func (m *Manager) Sync(ctx context.Context, flow *models.Flow) error {
	if err := m.Remove(ctx, flow.ID); err != nil {
		return err
	}

	var (
		errs  []error
		hosts []protocol.TriggerHost
	)

	for _, node := range flow.TriggerNodes() {
		host, ok := m.hosts[node.Type]
		if !ok {
			if node.Type != models.NodeTypeTriggerManual {
				m.logger.WarnContext(ctx, "No host for trigger type", "flow_id", flow.ID, "node_id", node.ID, "type", node.Type)
			}

			continue
		}

		node.Config = m.interpolator.Resolve(node.Config, template.MapScope(flow.Variables))

		err := host.Register(ctx, flow.ID, node, m.callback)
		if err != nil {
			errs = append(errs, fmt.Errorf("node %s: %w", node.ID, err))

			continue
		}

		if !slices.Contains(hosts, host) {
			hosts = append(hosts, host)
		}
	}

	m.mu.Lock()
	m.registered[flow.ID] = hosts
	m.mu.Unlock()

	return errors.Join(errs...)
}

// Remove unregisters every trigger of flowID.
func (m *Manager) Remove(ctx context.Context, flowID string) error {
	m.mu.Lock()
	hosts := m.registered[flowID]
	delete(m.registered, flowID)
	m.mu.Unlock()

	var errs []error
	for _, host := range hosts {
		errs = append(errs, host.Unregister(ctx, flowID))
	}

	return errors.Join(errs...)
}

// Stop stops every host.
func (m *Manager) Stop(ctx context.Context) error {
	var errs []error
	for _, host := range m.hosts {
		errs = append(errs, host.Stop(ctx))
	}

	return errors.Join(errs...)
}
