package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgeflow/forgeflow/pkg/eventbus"
	"github.com/forgeflow/forgeflow/pkg/events"
	"github.com/forgeflow/forgeflow/pkg/log"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/trigger"
	"github.com/forgeflow/forgeflow/pkg/persistence"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/registry"
	"github.com/forgeflow/forgeflow/pkg/workflow"
)

type ExecutionsOption func(*Executions)

// WithPersistence stores every execution record when it starts and when it finishes.
func WithPersistence(p persistence.Persistence) ExecutionsOption {
	return func(s *Executions) { s.persistence = p }
}

// WithPublisher publishes started, progress and finished events.
func WithPublisher(publisher eventbus.Publisher) ExecutionsOption {
	return func(s *Executions) { s.publisher = publisher }
}

func WithTracer(tracer trace.Tracer) ExecutionsOption {
	return func(s *Executions) { s.tracer = tracer }
}

func WithMaxNodeExecutions(n int) ExecutionsOption {
	return func(s *Executions) { s.maxNodeExecutions = n }
}

// Executions runs flows and keeps the live record of every execution still in flight.
type Executions struct {
	registry          *registry.Registry
	persistence       persistence.Persistence
	publisher         eventbus.Publisher
	tracer            trace.Tracer
	base              *slog.Logger
	logger            *slog.Logger
	maxNodeExecutions int

	mu      sync.RWMutex
	running map[string]*liveExecution
	wg      sync.WaitGroup
}

type liveExecution struct {
	record *models.FlowExecution
	cancel context.CancelFunc
}

func NewExecutions(logger *slog.Logger, reg *registry.Registry, opts ...ExecutionsOption) *Executions {
	s := &Executions{
		registry: reg,
		base:     logger,
		logger:   logger.With("module", "executions"),
		running:  make(map[string]*liveExecution),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches flow in the background and returns the running record. The run outlives ctx
// and is stopped through Stop or Shutdown.
func (s *Executions) Start(ctx context.Context, flow *models.Flow, payload map[string]any) (*models.FlowExecution, error) {
	if flow == nil {
		return nil, ErrFlowNil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	record := s.begin(ctx, flow, payload, cancel)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer cancel()

		_, _ = s.execute(runCtx, flow, record.ID, payload)
	}()

	return record, nil
}

// Run executes flow synchronously. The returned record is final; err is the run failure, if any.
func (s *Executions) Run(ctx context.Context, flow *models.Flow, payload map[string]any) (*models.FlowExecution, error) {
	if flow == nil {
		return nil, ErrFlowNil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	record := s.begin(ctx, flow, payload, cancel)

	return s.execute(runCtx, flow, record.ID, payload)
}

// Stop cancels a running execution.
func (s *Executions) Stop(ctx context.Context, id string) error {
	s.mu.RLock()
	live, ok := s.running[id]
	s.mu.RUnlock()

	if ok {
		live.cancel()
		s.logger.InfoContext(ctx, "Execution stop requested", "execution_id", id)

		return nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	return ErrExecutionNotRunning
}

// Get returns the live record of a running execution or the stored one.
func (s *Executions) Get(ctx context.Context, id string) (*models.FlowExecution, error) {
	s.mu.RLock()
	live, ok := s.running[id]

	if ok {
		record := snapshot(live.record)
		s.mu.RUnlock()

		return record, nil
	}

	s.mu.RUnlock()

	if s.persistence == nil {
		return nil, persistence.NewExecutionError("Execution", id, ErrExecutionNotFound)
	}

	return s.persistence.Execution(ctx, id)
}

// List returns the executions of flowID, most recent first, live records taking precedence.
func (s *Executions) List(ctx context.Context, flowID string) ([]*models.FlowExecution, error) {
	var stored []*models.FlowExecution

	if s.persistence != nil {
		var err error

		stored, err = s.persistence.Executions(ctx, flowID)
		if err != nil {
			return nil, fmt.Errorf("failed to list executions: %w", err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.FlowExecution

	for _, live := range s.running {
		if live.record.FlowID == flowID {
			list = append(list, snapshot(live.record))
		}
	}

	for _, record := range stored {
		if _, ok := s.running[record.ID]; !ok {
			list = append(list, record)
		}
	}

	sortByStart(list)

	return list, nil
}

// Shutdown cancels every running execution and waits for the background ones to settle.
func (s *Executions) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	for _, live := range s.running {
		live.cancel()
	}
	s.mu.RUnlock()

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Executions) begin(ctx context.Context, flow *models.Flow, payload map[string]any, cancel context.CancelFunc) *models.FlowExecution {
	record := &models.FlowExecution{
		ID:        uuid.New().String(),
		FlowID:    flow.ID,
		Status:    models.ExecutionStatusRunning,
		Results:   []models.NodeResult{},
		Trigger:   payload,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.running[record.ID] = &liveExecution{record: record, cancel: cancel}
	started := snapshot(record)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Execution started", "execution_id", record.ID, "flow_id", flow.ID)

	s.save(ctx, started)
	s.publish(ctx, flow.ID, events.ExecutionStarted{
		BaseEvent: events.NewBaseEvent(events.ExecutionStartedEvent, flow.ID, record.ID),
		Trigger:   payload,
	})

	return started
}

func (s *Executions) execute(ctx context.Context, flow *models.Flow, id string, payload map[string]any) (*models.FlowExecution, error) {
	vars := maps.Clone(flow.Variables)
	if vars == nil {
		vars = map[string]any{}
	}

	if payload != nil {
		vars[trigger.PayloadVariable] = payload
	}

	opts := []workflow.Option{
		workflow.WithRunID(id),
		workflow.WithLogger(s.base),
		workflow.WithTracer(s.tracer),
		workflow.WithMaxNodeExecutions(s.maxNodeExecutions),
		workflow.WithProgress(func(results []models.NodeResult) {
			s.progress(ctx, flow.ID, id, results)
		}),
		workflow.WithLogSink(func(level models.LogLevel, message, nodeID string) {
			s.appendLog(id, models.LogEntry{Level: level, Message: message, NodeID: nodeID, Timestamp: time.Now().UTC()})
		}),
	}

	ctx = log.WithLogger(ctx, s.base.With("execution_id", id, "flow_id", flow.ID))

	result, runErr := workflow.NewExecutor(flow.Graph, s.registry, opts...).ExecuteRun(ctx, vars)

	ended := time.Now().UTC()

	s.mu.Lock()
	record := s.running[id].record
	record.Results = result.Results
	record.Logs = result.Logs
	record.EndedAt = &ended

	switch {
	case runErr == nil:
		record.Status = models.ExecutionStatusSuccess
	case workflow.IsCancelled(runErr) || errors.Is(runErr, context.Canceled):
		record.Status = models.ExecutionStatusCancelled
		record.Error = runErr.Error()
	default:
		record.Status = models.ExecutionStatusError
		record.Error = runErr.Error()
	}

	final := snapshot(record)
	delete(s.running, id)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Execution finished",
		"execution_id", id, "flow_id", flow.ID, "status", final.Status, "duration", ended.Sub(final.StartedAt))

	// The run context may be cancelled already; the final record must still be written.
	detached := context.WithoutCancel(ctx)

	s.save(detached, final)
	s.publish(detached, flow.ID, events.ExecutionFinished{
		BaseEvent: events.NewBaseEvent(events.ExecutionFinishedEvent, flow.ID, id),
		Status:    final.Status,
		Error:     final.Error,
		Duration:  ended.Sub(final.StartedAt),
	})

	return final, runErr
}

func (s *Executions) progress(ctx context.Context, flowID, id string, results []models.NodeResult) {
	s.mu.Lock()
	if live, ok := s.running[id]; ok {
		live.record.Results = results
	}
	s.mu.Unlock()

	s.publish(ctx, flowID, events.ExecutionProgress{
		BaseEvent: events.NewBaseEvent(events.ExecutionProgressEvent, flowID, id),
		Results:   results,
	})
}

func (s *Executions) appendLog(id string, entry models.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if live, ok := s.running[id]; ok {
		live.record.Logs = append(live.record.Logs, entry)
	}
}

func (s *Executions) save(ctx context.Context, record *models.FlowExecution) {
	if s.persistence == nil {
		return
	}

	err := s.persistence.SaveExecution(ctx, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save execution", "execution_id", record.ID, "error", err)
	}
}

func (s *Executions) publish(ctx context.Context, flowID string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.Publish(ctx, flowID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

// TriggerCallback starts the stored flow a trigger host fired.
func (s *Executions) TriggerCallback(flows *Flow) protocol.TriggerCallback {
	return func(ctx context.Context, flowID string, payload map[string]any) error {
		flow, err := flows.Get(ctx, flowID)
		if err != nil {
			return err
		}

		_, err = s.Start(ctx, flow, payload)

		return err
	}
}
