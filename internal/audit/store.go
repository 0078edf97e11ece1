package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BaSui01/shopagent/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QueryRecorder 记录数据库操作耗时，metrics.Collector 实现该接口
type QueryRecorder interface {
	RecordDBQuery(database, operation string, duration time.Duration)
}

// Store 基于 GORM 的审计存储
type Store struct {
	pool    *database.PoolManager
	logger  *zap.Logger
	metrics QueryRecorder
}

// Option 可选配置
type Option func(*Store)

// WithQueryRecorder 注入数据库指标
func WithQueryRecorder(r QueryRecorder) Option {
	return func(s *Store) { s.metrics = r }
}

// NewStore 创建审计存储
func NewStore(pool *database.PoolManager, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		pool:   pool,
		logger: logger.With(zap.String("component", "audit")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate 创建或更新审计表
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.pool.DB().WithContext(ctx).AutoMigrate(&RunRecord{}, &StepRecord{}); err != nil {
		return fmt.Errorf("audit migrate: %w", err)
	}
	return nil
}

// Record 在单个事务中写入运行及其节点记录
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.RunID == "" {
		return errors.New("audit entry requires a run id")
	}
	rec := entry.toRecord()

	start := time.Now()
	err := s.pool.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	s.observe("insert", start)

	if err != nil {
		return fmt.Errorf("audit record %s: %w", entry.RunID, err)
	}
	s.logger.Debug("run recorded",
		zap.String("run_id", entry.RunID),
		zap.Int("steps", len(rec.Steps)),
	)
	return nil
}

// Recent 按时间倒序返回最近的运行记录（含节点）
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	start := time.Now()
	var runs []RunRecord
	err := s.pool.DB().WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	s.observe("select", start)
	if err != nil {
		return nil, fmt.Errorf("audit recent: %w", err)
	}
	return runs, nil
}

// Ping 检查审计库连接
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordDBQuery("audit", op, time.Since(start))
	}
}
