package audit

import (
	"strings"
	"time"

	"github.com/BaSui01/shopagent/workflow"
)

// RunRecord 一次 Agent 运行
type RunRecord struct {
	ID            uint   `gorm:"primaryKey"`
	RunID         string `gorm:"size:64;uniqueIndex"`
	RequestID     string `gorm:"size:64;index"`
	Query         string `gorm:"type:text"`
	Intent        string `gorm:"size:16"`
	Path          string `gorm:"size:255"`
	NextStep      string `gorm:"size:16"`
	OrderID       string `gorm:"size:64"`
	Authenticated bool
	MessageCount  int
	DurationMs    int64
	Error         string       `gorm:"type:text"`
	Steps         []StepRecord `gorm:"foreignKey:RunID;references:RunID"`
	CreatedAt     time.Time
}

// TableName 表名
func (RunRecord) TableName() string { return "audit_runs" }

// StepRecord 运行中的单个节点
type StepRecord struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"size:64;index"`
	Seq        int
	Node       string `gorm:"size:64"`
	NextNode   string `gorm:"size:64"`
	Status     string `gorm:"size:16"`
	DurationMs int64
	Error      string `gorm:"type:text"`
}

// TableName 表名
func (StepRecord) TableName() string { return "audit_steps" }

// Entry 调用方提交的审计条目
type Entry struct {
	RunID         string
	RequestID     string
	Query         string
	Intent        string
	Path          []string
	NextStep      string
	OrderID       string
	Authenticated bool
	MessageCount  int
	Duration      time.Duration
	Err           error
	History       *workflow.ExecutionHistory
}

// toRecord 将 Entry 转换为可持久化的记录
func (e Entry) toRecord() RunRecord {
	rec := RunRecord{
		RunID:         e.RunID,
		RequestID:     e.RequestID,
		Query:         e.Query,
		Intent:        e.Intent,
		Path:          strings.Join(e.Path, ","),
		NextStep:      e.NextStep,
		OrderID:       e.OrderID,
		Authenticated: e.Authenticated,
		MessageCount:  e.MessageCount,
		DurationMs:    e.Duration.Milliseconds(),
	}
	if e.Err != nil {
		rec.Error = e.Err.Error()
	}
	if e.History != nil {
		for i, n := range e.History.GetNodes() {
			rec.Steps = append(rec.Steps, StepRecord{
				RunID:      e.RunID,
				Seq:        i,
				Node:       n.NodeID,
				NextNode:   n.NextNode,
				Status:     string(n.Status),
				DurationMs: n.Duration.Milliseconds(),
				Error:      n.Error,
			})
		}
	}
	return rec
}
