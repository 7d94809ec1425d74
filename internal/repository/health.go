package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// HealthDB 健康检查需要的连接能力，*pgxpool.Pool 满足该接口
type HealthDB interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HealthStatus 单次检查结果
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	ResponseTime time.Duration `json:"response_time_ms"`
	Error        string        `json:"error,omitempty"`
}

// HealthChecker 数据库健康检查：先 Ping，再执行 SELECT 1
type HealthChecker struct {
	db HealthDB
}

// NewHealthChecker 创建数据库健康检查器
func NewHealthChecker(db HealthDB) *HealthChecker {
	return &HealthChecker{db: db}
}

// Check 执行一次检查
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	start := time.Now()
	status := HealthStatus{Healthy: true}

	if err := h.check(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
	}
	status.ResponseTime = time.Since(start)
	return status
}

// Ping 供 /health 使用，不健康时返回原因
func (h *HealthChecker) Ping(ctx context.Context) error {
	return h.check(ctx)
}

func (h *HealthChecker) check(ctx context.Context) error {
	if err := h.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := h.db.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("unexpected query result %d", result)
	}
	return nil
}
