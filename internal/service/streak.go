package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gautriv/productivity/internal/repository"
)

// StreakResult 连续天数统计
type StreakResult struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// StreakTracker 基于去重完成日期序列计算连续记录
type StreakTracker struct {
	scheduleRepo ScheduleRepository
}

// NewStreakTracker 创建连续记录统计器
func NewStreakTracker(scheduleRepo ScheduleRepository) *StreakTracker {
	return &StreakTracker{scheduleRepo: scheduleRepo}
}

// Streaks 计算截至 today 的当前与历史最长连续完成天数
// 今天还没完成任务不该把连续记录清零，锚点允许退到昨天。
func (t *StreakTracker) Streaks(ctx context.Context, today string) (StreakResult, error) {
	dates, err := t.scheduleRepo.DistinctCompletionDates(ctx)
	if err != nil {
		return StreakResult{}, fmt.Errorf("读取完成日期失败: %w", err)
	}
	anchor, err := time.Parse(repository.DateLayout, today)
	if err != nil {
		return StreakResult{}, fmt.Errorf("无效日期 %q: %w", today, err)
	}
	return computeStreaks(dates, anchor), nil
}

func computeStreaks(dates []string, anchor time.Time) StreakResult {
	if len(dates) == 0 {
		return StreakResult{}
	}

	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}

	// 当前连续：从今天往回数，今天无完成则从昨天起算
	cursor := anchor
	if !set[cursor.Format(repository.DateLayout)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	current := 0
	for set[cursor.Format(repository.DateLayout)] {
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	// 历史最长：dates 升序，逐段数连续
	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		prev, err1 := time.Parse(repository.DateLayout, dates[i-1])
		cur, err2 := time.Parse(repository.DateLayout, dates[i])
		if err1 != nil || err2 != nil {
			continue
		}
		if cur.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	if current > longest {
		longest = current
	}

	return StreakResult{Current: current, Longest: longest}
}
