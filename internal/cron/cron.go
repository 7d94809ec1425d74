package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/listen-stream/music-svc/internal/service"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// Sweeper 清理临时上传文件
type Sweeper interface {
	Sweep(ctx context.Context) (*service.SweepStats, error)
}

// CronManager 定时任务管理器
type CronManager struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string
	timeout time.Duration
	log     logger.Logger
}

// NewCronManager 创建定时任务管理器，spec 为标准五段式表达式
func NewCronManager(sweeper Sweeper, spec string, log logger.Logger) *CronManager {
	return &CronManager{
		cron:    cron.New(cron.WithLocation(time.Local)),
		sweeper: sweeper,
		spec:    spec,
		timeout: 5 * time.Minute,
		log:     log,
	}
}

// Start 注册并启动清理任务
func (m *CronManager) Start() error {
	if _, err := m.cron.AddFunc(m.spec, m.runScheduled); err != nil {
		return fmt.Errorf("schedule upload sweep %q: %w", m.spec, err)
	}

	m.cron.Start()
	m.log.Info("cron manager started", logger.String("upload_sweep", m.spec))
	return nil
}

func (m *CronManager) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	start := time.Now()
	stats, err := m.sweeper.Sweep(ctx)
	if err != nil {
		m.log.Error("upload sweep failed", logger.Error(err))
		return
	}
	m.log.Debug("upload sweep finished",
		logger.Int("removed", stats.Removed),
		logger.Duration("duration", time.Since(start)),
	)
}

// Stop 停止调度并等待正在执行的任务完成
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron manager stopped")
}

// RunSweepNow 立即执行一次清理
func (m *CronManager) RunSweepNow(ctx context.Context) (*service.SweepStats, error) {
	return m.sweeper.Sweep(ctx)
}
