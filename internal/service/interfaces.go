package service

import (
	"context"
	"time"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// 仓储依赖的最小接口集合（ISP）

type ScheduleRepository interface {
	GetByDate(ctx context.Context, date string) ([]repository.TaskRow, error)
	GetByDateRange(ctx context.Context, startDate, endDate string) ([]repository.TaskRow, error)
	GetIncompleteOnDate(ctx context.Context, date string) ([]schema.ScheduledTask, error)
	GetCompleted(ctx context.Context) ([]repository.TaskRow, error)
	GetDailyCounts(ctx context.Context) ([]repository.DailyCount, error)
	DistinctCompletionDates(ctx context.Context) ([]string, error)
	GetSimilarBefore(ctx context.Context, complexity int, load, beforeDate string, limit int) ([]repository.TaskRow, error)
	TotalPenalties(ctx context.Context) (int, error)
}

type SummaryRepository interface {
	Upsert(ctx context.Context, summary *schema.DailySummary) error
	GetByDate(ctx context.Context, date string) (*schema.DailySummary, error)
	GetByDateRange(ctx context.Context, startDate, endDate string) ([]schema.DailySummary, error)
	GetRecent(ctx context.Context, days int) ([]schema.DailySummary, error)
}

type StatsRepository interface {
	Get(ctx context.Context) (*schema.UserStats, error)
	Save(ctx context.Context, stats *schema.UserStats) error
}

type AchievementRepository interface {
	UnlockedKeys(ctx context.Context) (map[string]time.Time, error)
	Unlock(ctx context.Context, key string, at time.Time) error
}
