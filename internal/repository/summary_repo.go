package repository

import (
	"context"
	"fmt"

	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryRepository 每日汇总缓存仓储
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository 创建仓储
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert 插入或更新
func (r *SummaryRepository) Upsert(ctx context.Context, summary *schema.DailySummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(summary).Error
}

// GetByDate 按日期获取
func (r *SummaryRepository) GetByDate(ctx context.Context, date string) (*schema.DailySummary, error) {
	var summary schema.DailySummary
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&summary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询汇总失败: %w", err)
	}
	return &summary, nil
}

// GetByDateRange 获取日期范围内的汇总，日期升序（趋势分析要求最旧在前）
func (r *SummaryRepository) GetByDateRange(ctx context.Context, startDate, endDate string) ([]schema.DailySummary, error) {
	var summaries []schema.DailySummary
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date ASC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("查询日期范围汇总失败: %w", err)
	}
	return summaries, nil
}

// GetRecent 获取最近 N 天的汇总，日期升序
func (r *SummaryRepository) GetRecent(ctx context.Context, days int) ([]schema.DailySummary, error) {
	var summaries []schema.DailySummary
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(days).
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("查询汇总失败: %w", err)
	}
	// 倒序取出后翻转为升序
	for i, j := 0, len(summaries)-1; i < j; i, j = i+1, j-1 {
		summaries[i], summaries[j] = summaries[j], summaries[i]
	}
	return summaries, nil
}
