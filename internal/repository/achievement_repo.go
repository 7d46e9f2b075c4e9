package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementRepository 成就解锁状态仓储
type AchievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository 创建仓储
func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// UnlockedKeys 已解锁成就 key 集合
func (r *AchievementRepository) UnlockedKeys(ctx context.Context) (map[string]time.Time, error) {
	var unlocks []schema.AchievementUnlock
	if err := r.db.WithContext(ctx).Find(&unlocks).Error; err != nil {
		return nil, fmt.Errorf("查询成就解锁失败: %w", err)
	}
	keys := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		keys[u.Key] = u.UnlockedAt
	}
	return keys, nil
}

// Unlock 写入解锁记录；重复写入不报错（解锁单调，不覆盖时间戳）
func (r *AchievementRepository) Unlock(ctx context.Context, key string, at time.Time) error {
	unlock := schema.AchievementUnlock{Key: key, UnlockedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&unlock).Error
	if err != nil {
		return fmt.Errorf("写入成就解锁失败: %w", err)
	}
	return nil
}
