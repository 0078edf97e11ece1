package audit

import (
	"context"
	"fmt"

	"github.com/BaSui01/shopagent/internal/pool"
)

// Writer 同步写入审计条目，Store 实现该接口
type Writer interface {
	Record(ctx context.Context, entry Entry) error
}

// AsyncRecorder 通过后台 worker 池写入审计，请求路径只负责入队。
// 队列满时直接返回错误，条目被丢弃
type AsyncRecorder struct {
	writer Writer
	pool   *pool.WorkerPool
}

// NewAsyncRecorder 创建异步审计记录器，pool 的生命周期由调用方管理
func NewAsyncRecorder(writer Writer, workers *pool.WorkerPool) *AsyncRecorder {
	return &AsyncRecorder{writer: writer, pool: workers}
}

// Record 入队一条审计，ctx 仅用于满足接口，写入使用 worker 自己的超时
func (r *AsyncRecorder) Record(_ context.Context, entry Entry) error {
	err := r.pool.Submit(func(ctx context.Context) error {
		if err := r.writer.Record(ctx, entry); err != nil {
			return fmt.Errorf("record run %s: %w", entry.RunID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue run %s: %w", entry.RunID, err)
	}
	return nil
}
