// Package pool provides a bounded worker pool for background tasks.
// This package is internal and should not be imported by external projects.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("pool is closed")
	ErrPoolFull   = errors.New("pool is full")
)

// Task represents a unit of work. ctx carries the pool's per-task timeout,
// never the submitter's context.
type Task func(ctx context.Context) error

// Config configures the pool.
type Config struct {
	Workers     int           `yaml:"workers" json:"workers"`
	QueueSize   int           `yaml:"queue_size" json:"queue_size"`
	TaskTimeout time.Duration `yaml:"task_timeout" json:"task_timeout"`
}

// DefaultConfig returns defaults sized for audit writes.
func DefaultConfig() Config {
	return Config{
		Workers:     2,
		QueueSize:   256,
		TaskTimeout: 5 * time.Second,
	}
}

// WorkerPool runs submitted tasks on a fixed set of goroutines. Submit never
// blocks: when the queue is full the task is rejected.
type WorkerPool struct {
	name    string
	queue   chan Task
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	active    atomic.Int32
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
}

// New starts a pool with cfg.Workers goroutines. Zero fields fall back to
// DefaultConfig.
func New(name string, cfg Config, logger *zap.Logger) *WorkerPool {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = def.TaskTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &WorkerPool{
		name:    name,
		queue:   make(chan Task, cfg.QueueSize),
		timeout: cfg.TaskTimeout,
		logger:  logger.With(zap.String("component", "pool"), zap.String("pool", name)),
	}
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without waiting for it to run.
func (p *WorkerPool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- task:
		p.submitted.Add(1)
		return nil
	default:
		p.rejected.Add(1)
		return ErrPoolFull
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for task := range p.queue {
		p.active.Add(1)
		err := p.execute(task)
		p.active.Add(-1)

		if err != nil {
			p.failed.Add(1)
			p.logger.Warn("background task failed", zap.Error(err))
			continue
		}
		p.completed.Add(1)
	}
}

func (p *WorkerPool) execute(task Task) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return task(ctx)
}

// Close stops accepting tasks and waits for queued ones to finish or for ctx
// to expire. Repeated calls return nil.
func (p *WorkerPool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Debug("pool drained", zap.Int64("completed", p.completed.Load()))
		return nil
	case <-ctx.Done():
		p.logger.Warn("pool close timed out", zap.Int("queued", len(p.queue)))
		return ctx.Err()
	}
}

// Stats returns pool statistics.
func (p *WorkerPool) Stats() Stats {
	return Stats{
		Active:    int(p.active.Load()),
		Queued:    len(p.queue),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Rejected:  p.rejected.Load(),
	}
}

// Stats contains pool statistics.
type Stats struct {
	Active    int   `json:"active"`
	Queued    int   `json:"queued"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Rejected  int64 `json:"rejected"`
}
