// Package schedule fires trigger_schedule nodes on their cron expression.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

var ErrCronRequired = errors.New("schedule trigger cron expression is required")

// Host runs every registered schedule on a single cron scheduler.
type Host struct {
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string][]cron.EntryID
}

func NewHost(logger *slog.Logger) *Host {
	logger = logger.With("module", "schedule_trigger")
	cronLogger := slogAdapter{logger: logger}

	h := &Host{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger),
		)),
		logger:  logger,
		entries: make(map[string][]cron.EntryID),
	}

	h.cron.Start()

	return h
}

func (h *Host) Type() models.NodeType {
	return models.NodeTypeTriggerSchedule
}

func (h *Host) Register(ctx context.Context, flowID string, node models.Node, callback protocol.TriggerCallback) error {
	expr := nodeconfig.String(node.Config, "cron", "")
	if expr == "" {
		return ErrCronRequired
	}

	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	logger := h.logger.With("flow_id", flowID, "node_id", node.ID, "cron", expr)

	id := h.cron.Schedule(schedule, cron.FuncJob(func() {
		logger.Info("Cron job triggered")

		payload := map[string]any{
			"cron":      expr,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		err := callback(context.WithoutCancel(ctx), flowID, payload)
		if err != nil {
			logger.Error("Error starting flow for trigger", "error", err)
		}
	}))

	h.mu.Lock()
	h.entries[flowID] = append(h.entries[flowID], id)
	h.mu.Unlock()

	logger.InfoContext(ctx, "Schedule registered", "next", h.cron.Entry(id).Next)

	return nil
}

func (h *Host) Unregister(_ context.Context, flowID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, id := range h.entries[flowID] {
		h.cron.Remove(id)
	}

	delete(h.entries, flowID)

	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (h *Host) Stop(ctx context.Context) error {
	select {
	case <-h.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
