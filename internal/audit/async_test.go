package audit

import (
	"context"
	"testing"

	"github.com/BaSui01/shopagent/internal/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAsyncRecorder_WritesInBackground(t *testing.T) {
	store := newSQLiteStore(t)
	workers := pool.New("audit", pool.Config{Workers: 1, QueueSize: 8}, zap.NewNop())
	rec := NewAsyncRecorder(store, workers)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, rec.Record(ctx, Entry{RunID: "run-a", RequestID: "req-a", Query: "iphone"}))
	require.NoError(t, rec.Record(ctx, Entry{RunID: "run-b", Query: "buy iphone"}))
	// 调用方 ctx 取消不影响后台写入
	cancel()

	require.NoError(t, workers.Close(context.Background()))

	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "req-a", runs[1].RequestID)
	assert.Equal(t, int64(2), workers.Stats().Completed)
}

func TestAsyncRecorder_WriteFailureCounted(t *testing.T) {
	store := newSQLiteStore(t)
	workers := pool.New("audit", pool.Config{Workers: 1, QueueSize: 8}, zap.NewNop())
	rec := NewAsyncRecorder(store, workers)

	// 缺少 run id 的条目在写入时失败，入队本身成功
	require.NoError(t, rec.Record(context.Background(), Entry{}))
	require.NoError(t, workers.Close(context.Background()))

	assert.Equal(t, int64(1), workers.Stats().Failed)
}

func TestAsyncRecorder_ClosedPool(t *testing.T) {
	workers := pool.New("audit", pool.DefaultConfig(), zap.NewNop())
	require.NoError(t, workers.Close(context.Background()))

	rec := NewAsyncRecorder(newSQLiteStore(t), workers)
	err := rec.Record(context.Background(), Entry{RunID: "late"})
	assert.ErrorIs(t, err, pool.ErrPoolClosed)
}
