package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
)

// StatsRepository 用户累计统计仓储（单行表）
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建仓储
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Get 读取统计行，不存在时初始化（Level 从 1 起）
func (r *StatsRepository) Get(ctx context.Context) (*schema.UserStats, error) {
	var stats schema.UserStats
	err := r.db.WithContext(ctx).First(&stats, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stats = schema.UserStats{ID: 1, Level: 1}
			if err := r.db.WithContext(ctx).Create(&stats).Error; err != nil {
				return nil, fmt.Errorf("初始化用户统计失败: %w", err)
			}
			return &stats, nil
		}
		return nil, fmt.Errorf("读取用户统计失败: %w", err)
	}
	return &stats, nil
}

// Save 保存统计行
func (r *StatsRepository) Save(ctx context.Context, stats *schema.UserStats) error {
	if err := r.db.WithContext(ctx).Save(stats).Error; err != nil {
		return fmt.Errorf("保存用户统计失败: %w", err)
	}
	return nil
}
