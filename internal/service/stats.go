package service

import (
	"context"
	"fmt"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
)

// UserStatsView 用户统计的组装视图
type UserStatsView struct {
	TotalPoints          int     `json:"total_points"`
	TasksCompleted       int     `json:"tasks_completed"`
	CurrentStreak        int     `json:"current_streak"`
	LongestStreak        int     `json:"longest_streak"`
	Level                int     `json:"level"`
	NextLevelXP          int     `json:"next_level_xp"`
	XPPercentage         float64 `json:"xp_percentage"`
	AchievementsUnlocked int     `json:"achievements_unlocked"`
	AchievementsTotal    int     `json:"achievements_total"`
}

// StatsService 用户统计组装服务
// 统计行是派生缓存，每次组装都从历史重算再回写，
// 这样积分、惩罚、成就奖励不会因为某条路径漏记而漂移。
type StatsService struct {
	db     *gorm.DB
	points PointsPolicy
}

// NewStatsService 创建统计服务
func NewStatsService(db *gorm.DB, points PointsPolicy) *StatsService {
	return &StatsService{db: db, points: points}
}

// Assemble 组装截至 today 的用户统计并刷新缓存行
func (s *StatsService) Assemble(ctx context.Context, today string) (*UserStatsView, error) {
	scheduleRepo := repository.NewScheduleRepository(s.db)
	achRepo := repository.NewAchievementRepository(s.db)

	completed, err := scheduleRepo.GetCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取完成历史失败: %w", err)
	}

	earned := 0
	for _, row := range completed {
		earned += s.points.TaskPoints(row.Complexity, row.CognitiveLoad, row.TimeEstimate, row.SubtaskCount > 0)
	}

	penalties, err := scheduleRepo.TotalPenalties(ctx)
	if err != nil {
		return nil, err
	}

	unlocked, err := achRepo.UnlockedKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取成就状态失败: %w", err)
	}
	rewards := 0
	for _, def := range achievementRegistry {
		if _, ok := unlocked[def.Key]; ok {
			rewards += def.Reward
		}
	}

	total := earned + rewards - penalties
	if total < 0 {
		total = 0
	}

	streaks, err := NewStreakTracker(scheduleRepo).Streaks(ctx, today)
	if err != nil {
		return nil, err
	}

	info := LevelForPoints(total)

	view := &UserStatsView{
		TotalPoints:          total,
		TasksCompleted:       len(completed),
		CurrentStreak:        streaks.Current,
		LongestStreak:        streaks.Longest,
		Level:                info.Level,
		NextLevelXP:          info.NextLevelXP,
		XPPercentage:         info.XPPercentage,
		AchievementsUnlocked: len(unlocked),
		AchievementsTotal:    len(achievementRegistry),
	}

	// 回写缓存行，失败不影响返回
	stats := &schema.UserStats{
		ID:             1,
		TotalPoints:    total,
		TasksCompleted: len(completed),
		CurrentStreak:  streaks.Current,
		LongestStreak:  streaks.Longest,
		Level:          info.Level,
		Experience:     total,
	}
	_ = repository.NewStatsRepository(s.db).Save(ctx, stats)

	return view, nil
}
