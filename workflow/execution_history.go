package workflow

import (
	"sync"
	"time"
)

// ExecutionStatus is the status of a run or of a single node.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// NodeExecution records one node invocation.
type NodeExecution struct {
	NodeID    string          `json:"node_id"`
	NextNode  string          `json:"next_node,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time,omitempty"`
	Duration  time.Duration   `json:"duration"`
	Status    ExecutionStatus `json:"status"`
	Error     string          `json:"error,omitempty"`
}

// ExecutionHistory is the timeline of a single run.
type ExecutionHistory struct {
	ExecutionID string           `json:"execution_id"`
	GraphName   string           `json:"graph_name"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time,omitempty"`
	Duration    time.Duration    `json:"duration"`
	Status      ExecutionStatus  `json:"status"`
	Error       string           `json:"error,omitempty"`
	Nodes       []*NodeExecution `json:"nodes"`
	mu          sync.RWMutex
}

// NewExecutionHistory starts a history for executionID.
func NewExecutionHistory(executionID, graphName string) *ExecutionHistory {
	return &ExecutionHistory{
		ExecutionID: executionID,
		GraphName:   graphName,
		StartTime:   time.Now(),
		Status:      ExecutionStatusRunning,
		Nodes:       make([]*NodeExecution, 0, 8),
	}
}

// RecordNodeStart appends a running entry for nodeID and returns it.
func (h *ExecutionHistory) RecordNodeStart(nodeID string) *NodeExecution {
	h.mu.Lock()
	defer h.mu.Unlock()

	node := &NodeExecution{
		NodeID:    nodeID,
		StartTime: time.Now(),
		Status:    ExecutionStatusRunning,
	}
	h.Nodes = append(h.Nodes, node)
	return node
}

// RecordNodeEnd closes a node entry.
func (h *ExecutionHistory) RecordNodeEnd(node *NodeExecution, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	node.EndTime = time.Now()
	node.Duration = node.EndTime.Sub(node.StartTime)
	if err != nil {
		node.Status = ExecutionStatusFailed
		node.Error = err.Error()
	} else {
		node.Status = ExecutionStatusCompleted
	}
}

// RecordTransition stores the node chosen after node.
func (h *ExecutionHistory) RecordTransition(node *NodeExecution, next string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	node.NextNode = next
}

// Complete marks the run as finished.
func (h *ExecutionHistory) Complete(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.EndTime = time.Now()
	h.Duration = h.EndTime.Sub(h.StartTime)
	if err != nil {
		h.Status = ExecutionStatusFailed
		h.Error = err.Error()
	} else {
		h.Status = ExecutionStatusCompleted
	}
}

// GetNodes returns a copy of the node executions.
func (h *ExecutionHistory) GetNodes() []*NodeExecution {
	h.mu.RLock()
	defer h.mu.RUnlock()

	nodes := make([]*NodeExecution, len(h.Nodes))
	copy(nodes, h.Nodes)
	return nodes
}

// GetNodeByID returns the first execution record for nodeID.
func (h *ExecutionHistory) GetNodeByID(nodeID string) *NodeExecution {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, node := range h.Nodes {
		if node.NodeID == nodeID {
			return node
		}
	}
	return nil
}
