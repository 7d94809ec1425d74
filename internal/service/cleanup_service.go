package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/listen-stream/music-svc/pkg/logger"
)

// UploadCleanupService 清理上传失败或进程中断后残留的临时文件
type UploadCleanupService struct {
	dir string
	ttl time.Duration
	log logger.Logger
	now func() time.Time
}

// NewUploadCleanupService 创建临时文件清理服务
func NewUploadCleanupService(dir string, ttl time.Duration, log logger.Logger) *UploadCleanupService {
	return &UploadCleanupService{
		dir: dir,
		ttl: ttl,
		log: log,
		now: time.Now,
	}
}

// SweepStats 清理统计
type SweepStats struct {
	StartTime time.Time
	EndTime   time.Time
	Scanned   int
	Removed   int
	Failed    int
	Errors    []string
}

// Sweep 删除修改时间早于 ttl 的文件，子目录不处理
func (s *UploadCleanupService) Sweep(ctx context.Context) (*SweepStats, error) {
	stats := &SweepStats{StartTime: s.now(), Errors: make([]string, 0)}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			stats.EndTime = s.now()
			return stats, nil
		}
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := stats.StartTime.Add(-s.ttl)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		stats.Scanned++

		info, err := entry.Info()
		if err != nil {
			// 扫描期间已被上传流程删除
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			stats.Failed++
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		stats.Removed++
	}

	stats.EndTime = s.now()
	log := s.log.WithContext(ctx)
	if stats.Failed > 0 {
		log.Warn("upload sweep completed with failures",
			logger.Int("scanned", stats.Scanned),
			logger.Int("removed", stats.Removed),
			logger.Int("failed", stats.Failed),
		)
	} else {
		log.Info("upload sweep completed",
			logger.Int("scanned", stats.Scanned),
			logger.Int("removed", stats.Removed),
			logger.Duration("elapsed", stats.EndTime.Sub(stats.StartTime)),
		)
	}
	return stats, nil
}
