package agent

import (
	"context"
	"fmt"

	"github.com/BaSui01/shopagent/workflow"
	"go.uber.org/zap"
)

// =============================================================================
// 🛒 购物助手
// =============================================================================

// Result 一次运行的结果
type Result = workflow.Result[State]

// Agent 购物助手，持有编译好的工作流，可并发调用 Run
type Agent struct {
	executor *workflow.Executor[State, Update]
	logger   *zap.Logger
}

// New 编译工作流并创建助手。opts 透传给执行器（日志、指标、追踪、步数预算）。
func New(steps *Steps, logger *zap.Logger, opts ...workflow.ExecutorOption) (*Agent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	graph, err := BuildGraph(steps)
	if err != nil {
		return nil, fmt.Errorf("build agent graph: %w", err)
	}

	execOpts := append([]workflow.ExecutorOption{workflow.WithLogger(logger)}, opts...)
	return &Agent{
		executor: workflow.NewExecutor(graph, execOpts...),
		logger:   logger.With(zap.String("component", "agent")),
	}, nil
}

// Run 从 check_login 开始执行一次完整对话流程。
// 调用方负责通过 ctx 设置超时。
func (a *Agent) Run(ctx context.Context, initial State) (*Result, error) {
	res, err := a.executor.Run(ctx, initial)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("agent run finished",
		zap.String("run_id", res.ExecutionID),
		zap.String("intent", string(res.State.Intent)),
		zap.String("next_step", res.State.NextStep),
		zap.Int("messages", len(res.State.Messages)),
	)
	return res, nil
}

// Nodes 返回工作流节点，按注册顺序
func (a *Agent) Nodes() []string {
	return a.executor.Graph().Nodes()
}
