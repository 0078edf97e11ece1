package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxSteps bounds the number of node invocations in a single run.
const DefaultMaxSteps = 25

// ErrStepBudgetExceeded is returned when a run visits more nodes than allowed.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

// Observer receives per-run measurements. metrics.Collector implements it.
type Observer interface {
	RecordWorkflowStep(graph, node, status string, duration time.Duration)
	RecordWorkflowTransition(graph, from, to string)
	RecordWorkflowRun(graph, status string, duration time.Duration)
}

// Result is the outcome of a successful run.
type Result[S any] struct {
	ExecutionID string
	State       S
	Path        []string
	History     *ExecutionHistory
}

type executorConfig struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	observer Observer
	maxSteps int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorConfig)

// WithLogger sets the executor logger.
func WithLogger(logger *zap.Logger) ExecutorOption {
	return func(c *executorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) ExecutorOption {
	return func(c *executorConfig) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) ExecutorOption {
	return func(c *executorConfig) { c.observer = o }
}

// WithMaxSteps changes the step budget. Values below 1 are ignored.
func WithMaxSteps(n int) ExecutorOption {
	return func(c *executorConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// Executor runs a compiled graph. One Executor may serve concurrent runs;
// each run owns its own state.
type Executor[S, U any] struct {
	graph    *CompiledGraph[S, U]
	logger   *zap.Logger
	tracer   trace.Tracer
	observer Observer
	maxSteps int
}

// NewExecutor creates an executor for graph.
func NewExecutor[S, U any](graph *CompiledGraph[S, U], opts ...ExecutorOption) *Executor[S, U] {
	cfg := executorConfig{
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("shopagent/workflow"),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor[S, U]{
		graph:    graph,
		logger:   cfg.logger.With(zap.String("component", "workflow_executor"), zap.String("graph", graph.name)),
		tracer:   cfg.tracer,
		observer: cfg.observer,
		maxSteps: cfg.maxSteps,
	}
}

// Graph returns the compiled graph this executor runs.
func (e *Executor[S, U]) Graph() *CompiledGraph[S, U] { return e.graph }

// Run executes the graph from its entry point until END. Any node error, an
// unmapped route key or an exhausted step budget aborts the run; no partial
// state is returned in that case.
//
// Cancellation is observed only between nodes: ctx is checked before each node
// starts and a cancelled run fails with ctx.Err(). A node already running is
// never interrupted by the executor; it sees ctx only through its own calls.
func (e *Executor[S, U]) Run(ctx context.Context, initial S) (*Result[S], error) {
	executionID := uuid.NewString()
	history := NewExecutionHistory(executionID, e.graph.name)
	logger := e.logger.With(zap.String("execution_id", executionID))
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "workflow.run "+e.graph.name,
		trace.WithAttributes(
			attribute.String("workflow.graph", e.graph.name),
			attribute.String("workflow.execution_id", executionID),
		),
	)
	defer span.End()

	logger.Debug("workflow run started", zap.String("entry", e.graph.entry))

	state, path, err := e.loop(ctx, logger, history, initial)
	history.Complete(err)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.recordRun(string(ExecutionStatusFailed), duration)
		logger.Error("workflow run failed",
			zap.Strings("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("workflow.steps", len(path)))
	e.recordRun(string(ExecutionStatusCompleted), duration)
	logger.Debug("workflow run completed",
		zap.Strings("path", path),
		zap.Duration("duration", duration),
	)

	return &Result[S]{
		ExecutionID: executionID,
		State:       state,
		Path:        path,
		History:     history,
	}, nil
}

func (e *Executor[S, U]) loop(ctx context.Context, logger *zap.Logger, history *ExecutionHistory, state S) (S, []string, error) {
	path := make([]string, 0, 8)
	current := e.graph.entry

	for current != END {
		if len(path) >= e.maxSteps {
			return state, path, fmt.Errorf("%w: %d", ErrStepBudgetExceeded, e.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return state, path, fmt.Errorf("workflow cancelled before node %s: %w", current, err)
		}

		node, ok := e.graph.nodes[current]
		if !ok {
			return state, path, fmt.Errorf("%w: %s", ErrUnknownNode, current)
		}

		update, rec, err := e.step(ctx, history, current, node, state)
		path = append(path, current)
		if err != nil {
			logger.Warn("node failed", zap.String("node", current), zap.Error(err))
			return state, path, fmt.Errorf("node %s failed: %w", current, err)
		}

		state = e.graph.merge(state, update)

		next, err := e.graph.Next(current, state)
		if err != nil {
			return state, path, err
		}
		history.RecordTransition(rec, next)
		if e.observer != nil {
			e.observer.RecordWorkflowTransition(e.graph.name, current, next)
		}
		logger.Debug("transition", zap.String("from", current), zap.String("to", next))
		current = next
	}

	return state, path, nil
}

func (e *Executor[S, U]) step(ctx context.Context, history *ExecutionHistory, id string, node NodeFunc[S, U], state S) (U, *NodeExecution, error) {
	rec := history.RecordNodeStart(id)
	ctx, span := e.tracer.Start(ctx, "workflow.step "+id,
		trace.WithAttributes(attribute.String("workflow.node", id)),
	)
	defer span.End()

	update, err := node(ctx, state)
	history.RecordNodeEnd(rec, err)

	status := string(ExecutionStatusCompleted)
	if err != nil {
		status = string(ExecutionStatusFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if e.observer != nil {
		e.observer.RecordWorkflowStep(e.graph.name, id, status, rec.Duration)
	}
	return update, rec, err
}

func (e *Executor[S, U]) recordRun(status string, d time.Duration) {
	if e.observer != nil {
		e.observer.RecordWorkflowRun(e.graph.name, status, d)
	}
}
