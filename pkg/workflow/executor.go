// Package workflow runs a node graph: it discovers entry points, dispatches every reachable node to
// its handler and follows the edges each result selects.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/otelhelper"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/registry"
	"github.com/forgeflow/forgeflow/pkg/template"
	"github.com/forgeflow/forgeflow/pkg/variables"
)

const (
	DefaultMaxNodeExecutions = 100

	HandleTrue    = "true"
	HandleFalse   = "false"
	HandleDefault = "default"
)

// LogFunc receives every user-facing trace line of a run.
type LogFunc func(level models.LogLevel, message, nodeID string)

type Option func(*Executor)

// WithProgress sets the observer called with the ordered results after every change.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// WithLogSink sets the receiver of the run trace lines.
func WithLogSink(fn LogFunc) Option {
	return func(e *Executor) { e.onLog = fn }
}

// WithMaxNodeExecutions bounds how many times a single node may run within one run.
func WithMaxNodeExecutions(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxNodeExecutions = n
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRunID fixes the id of the next runs instead of generating one per run.
func WithRunID(id string) Option {
	return func(e *Executor) { e.runID = id }
}

// Executor runs one graph. It holds no per-run state and may run the graph any number of times.
type Executor struct {
	graph             models.Graph
	registry          *registry.Registry
	logger            *slog.Logger
	tracer            trace.Tracer
	interpolator      *template.Interpolator
	onProgress        ProgressFunc
	onLog             LogFunc
	maxNodeExecutions int
	runID             string
}

// NewExecutor copies graph and drops its dangling edges.
func NewExecutor(graph models.Graph, reg *registry.Registry, opts ...Option) *Executor {
	e := &Executor{
		registry:          reg,
		logger:            slog.Default(),
		tracer:            otelhelper.NoopTracer(),
		maxNodeExecutions: DefaultMaxNodeExecutions,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.With("module", "workflow_executor")
	e.interpolator = template.NewInterpolator(e.logger)

	e.graph = models.Graph{
		Nodes: append([]models.Node(nil), graph.Nodes...),
		Edges: append([]models.Edge(nil), graph.Edges...),
	}

	for _, edge := range e.graph.Normalize() {
		e.logger.Warn("Dropping edge with unknown endpoint",
			"edge_id", edge.ID, "source", edge.Source, "target", edge.Target)
	}

	return e
}

// RunResult is the outcome of one run.
type RunResult struct {
	ID        string
	Results   []models.NodeResult
	Logs      []models.LogEntry
	Variables map[string]any
}

// Execute runs the graph with vars as the initial store content.
func (e *Executor) Execute(ctx context.Context, vars map[string]any) error {
	_, err := e.ExecuteRun(ctx, vars)

	return err
}

// ExecuteRun runs the graph and returns the trace. The result is non-nil even when the run fails.
func (e *Executor) ExecuteRun(ctx context.Context, vars map[string]any) (*RunResult, error) {
	id := e.runID
	if id == "" {
		id = uuid.NewString()
	}

	r := &run{
		executor:   e,
		id:         id,
		store:      variables.New(vars),
		tracker:    NewTracker(e.onProgress),
		inProgress: make(map[string]bool),
		executions: make(map[string]int),
		logger:     e.logger.With("run_id", id),
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.ExecutionIDKey, id),
		attribute.Int("forgeflow.graph.nodes", len(e.graph.Nodes)),
	)
	defer span.End()

	err := r.execute(ctx)
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return &RunResult{
		ID:        id,
		Results:   r.tracker.Results(),
		Logs:      r.entries(),
		Variables: r.store.Snapshot(),
	}, err
}

// run is the state of one execution.
type run struct {
	executor   *Executor
	id         string
	store      *variables.Store
	tracker    *Tracker
	logger     *slog.Logger
	inProgress map[string]bool
	executions map[string]int

	logMu sync.Mutex
	logs  []models.LogEntry
}

func (r *run) execute(ctx context.Context) error {
	entries := r.executor.graph.EntryPoints()
	if len(entries) == 0 {
		r.logger.Error("Graph has no entry point", "nodes", len(r.executor.graph.Nodes))

		return ErrNoEntryPoint
	}

	r.logger.Info("Starting run", "entry_points", entries)
	r.log(models.LogLevelInfo, fmt.Sprintf("Starting workflow with %d entry point(s)", len(entries)), "")

	for _, entry := range entries {
		if err := r.executeNode(ctx, entry); err != nil {
			r.logger.Error("Run failed", "error", err)

			return err
		}
	}

	r.logger.Info("Run completed")
	r.log(models.LogLevelSuccess, "Workflow completed", "")

	return nil
}

func (r *run) executeNode(ctx context.Context, nodeID string) error {
	node, ok := r.executor.graph.Node(nodeID)
	if !ok {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return r.cancel(node, err)
	}

	if r.inProgress[nodeID] {
		return r.refuse(node, ErrCycleDetected)
	}

	r.executions[nodeID]++
	if r.executions[nodeID] > r.executor.maxNodeExecutions {
		return r.refuse(node, fmt.Errorf("%w: limit is %d", ErrExecutionLimit, r.executor.maxNodeExecutions))
	}

	r.inProgress[nodeID] = true
	defer delete(r.inProgress, nodeID)

	if node.Disabled() {
		r.tracker.Skip(nodeID)
		r.log(models.LogLevelWarn, "Skipping disabled node: "+label(node), nodeID)

		return r.follow(ctx, node, r.executor.graph.Outgoing(nodeID))
	}

	ctx, span := otelhelper.StartSpan(ctx, r.executor.tracer, "workflow.node",
		attribute.String(otelhelper.ExecutionIDKey, r.id),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
	)
	defer span.End()

	r.tracker.Start(nodeID)
	r.log(models.LogLevelInfo, "Executing: "+label(node), nodeID)

	data := r.executor.interpolator.Resolve(node.Config, r.store)

	if err := ctx.Err(); err != nil {
		span.SetAttributes(attribute.String(otelhelper.NodeStatusKey, string(models.NodeStatusCancelled)))

		return r.cancel(node, err)
	}

	output, err := r.dispatch(ctx, node, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.SetAttributes(attribute.String(otelhelper.NodeStatusKey, string(models.NodeStatusCancelled)))

			return r.cancel(node, ctxErr)
		}

		otelhelper.SetError(span, err)
		span.SetAttributes(attribute.String(otelhelper.NodeStatusKey, string(models.NodeStatusError)))

		r.tracker.Fail(nodeID, err.Error())
		r.log(models.LogLevelError, fmt.Sprintf("Failed: %s: %v", label(node), err), nodeID)

		return &NodeError{NodeID: nodeID, NodeType: node.Type, Err: err}
	}

	r.store.RecordOutput(nodeID, output)
	r.tracker.Succeed(nodeID, output)
	span.SetAttributes(attribute.String(otelhelper.NodeStatusKey, string(models.NodeStatusSuccess)))

	if result, ok := r.tracker.Result(nodeID); ok {
		r.log(models.LogLevelSuccess, fmt.Sprintf("Completed: %s (%dms)", label(node), result.Duration().Milliseconds()), nodeID)
	}

	return r.follow(ctx, node, selectEdges(node, output, r.executor.graph.Outgoing(nodeID)))
}

func (r *run) dispatch(ctx context.Context, node *models.Node, data map[string]any) (output any, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Node handler panicked", "node_id", node.ID, "node_type", node.Type, "panic", p)
			output, err = nil, fmt.Errorf("%w: %v", ErrHandlerPanic, p)
		}
	}()

	handler, ok := r.executor.registry.Lookup(node.Type)
	if !ok {
		r.logger.Warn("No handler registered", "node_id", node.ID, "node_type", node.Type)
		r.log(models.LogLevelWarn, fmt.Sprintf("No handler for node type: %s", node.Type), node.ID)

		return nil, nil
	}

	return handler.Handle(ctx, protocol.Input{
		NodeID:    node.ID,
		NodeType:  node.Type,
		Data:      data,
		Variables: r.store,
		Log: func(level models.LogLevel, message string) {
			r.log(level, message, node.ID)
		},
	})
}

func (r *run) follow(ctx context.Context, node *models.Node, edges []models.Edge) error {
	for _, edge := range edges {
		if err := r.executeNode(ctx, edge.Target); err != nil {
			return err
		}
	}

	return nil
}

// selectEdges applies the branching rules of condition nodes. An if node takes the true edge only
// when its output is the boolean true. A switch follows the edge whose handle matches its output
// and also every default edge.
func selectEdges(node *models.Node, output any, edges []models.Edge) []models.Edge {
	var handle string

	switch node.Type {
	case models.NodeTypeConditionIf:
		handle = HandleFalse
		if matched, ok := output.(bool); ok && matched {
			handle = HandleTrue
		}
	case models.NodeTypeConditionSwitch:
		handle = template.Stringify(output)
	default:
		return edges
	}

	var selected []models.Edge

	for _, edge := range edges {
		if edge.SourceHandle == handle ||
			(node.Type == models.NodeTypeConditionSwitch && edge.SourceHandle == HandleDefault) {
			selected = append(selected, edge)
		}
	}

	return selected
}

func (r *run) cancel(node *models.Node, cause error) error {
	r.tracker.Cancel(node.ID)
	r.log(models.LogLevelWarn, "Cancelled: "+label(node), node.ID)

	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

func (r *run) refuse(node *models.Node, cause error) error {
	r.tracker.Fail(node.ID, cause.Error())
	r.log(models.LogLevelError, fmt.Sprintf("Failed: %s: %v", label(node), cause), node.ID)

	return &NodeError{NodeID: node.ID, NodeType: node.Type, Err: cause}
}

func (r *run) log(level models.LogLevel, message, nodeID string) {
	entry := models.LogEntry{Level: level, Message: message, NodeID: nodeID, Timestamp: time.Now()}

	r.logMu.Lock()
	r.logs = append(r.logs, entry)
	r.logMu.Unlock()

	if r.executor.onLog != nil {
		r.executor.onLog(level, message, nodeID)
	}
}

func (r *run) entries() []models.LogEntry {
	r.logMu.Lock()
	defer r.logMu.Unlock()

	return append([]models.LogEntry(nil), r.logs...)
}

func label(node *models.Node) string {
	if node.Name != "" {
		return node.Name
	}

	return fmt.Sprintf("%s (%s)", node.ID, node.Type)
}

// SlogSink forwards run trace lines to logger.
func SlogSink(logger *slog.Logger) LogFunc {
	return func(level models.LogLevel, message, nodeID string) {
		attrs := []any{"trace_level", string(level)}
		if nodeID != "" {
			attrs = append(attrs, "node_id", nodeID)
		}

		switch level {
		case models.LogLevelError:
			logger.Error(message, attrs...)
		case models.LogLevelWarn:
			logger.Warn(message, attrs...)
		default:
			logger.Info(message, attrs...)
		}
	}
}

// IsCancelled reports whether err ended a run because its context was done.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
