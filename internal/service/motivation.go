package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// 激励语境
const (
	ContextMorning    = "morning"
	ContextStruggling = "struggling"
	ContextWinning    = "winning"
	ContextEvening    = "evening"
)

// quotePools 按语境分组的激励语录
// 同一天同一语境取同一条，避免刷新页面就换话术。
var quotePools = map[string][]string{
	ContextMorning: {
		"The secret of getting ahead is getting started.",
		"Win the morning, win the day.",
		"Eat the frog first. The hardest task shrinks once you touch it.",
		"A fresh day is a fresh score. Go earn it.",
	},
	ContextStruggling: {
		"You don't have to finish everything. You have to finish something.",
		"Progress over perfection. One small task breaks the freeze.",
		"Rough patches end. Streaks restart. Pick one thing and do it.",
		"Lower the bar until you clear it, then raise it back.",
	},
	ContextWinning: {
		"Momentum is a moat. Keep stacking wins.",
		"This is what consistency looks like from the inside.",
		"You're outworking last week's you. That's the only race.",
		"Great run. Bank the points and protect the streak.",
	},
	ContextEvening: {
		"Review the day, then let it go. Tomorrow is already scheduled.",
		"Rest is part of the plan, not a deviation from it.",
		"Close the loops you can, write down the ones you can't.",
		"A good stop is as important as a good start.",
	},
}

// DailyChallenge 针对最弱负荷类别的当日挑战
type DailyChallenge struct {
	Date          string `json:"date"`
	CognitiveLoad string `json:"cognitive_load"`
	Description   string `json:"description"`
	BonusPoints   int    `json:"bonus_points"`
}

// Motivator 挑战与激励语生成器
type Motivator struct {
	scheduleRepo ScheduleRepository
	points       PointsPolicy
}

// NewMotivator 创建激励服务
func NewMotivator(scheduleRepo ScheduleRepository, points PointsPolicy) *Motivator {
	return &Motivator{scheduleRepo: scheduleRepo, points: points}
}

// Challenge 生成当日挑战：瞄准历史完成率最低的负荷类别
// 没有任何历史时默认挑战 deep_work。
func (m *Motivator) Challenge(ctx context.Context, date string) (DailyChallenge, error) {
	if _, err := time.Parse(repository.DateLayout, date); err != nil {
		return DailyChallenge{}, fmt.Errorf("无效日期 %q: %w", date, err)
	}

	start, err := repository.WindowStart(date, 30)
	if err != nil {
		return DailyChallenge{}, err
	}
	rows, err := m.scheduleRepo.GetByDateRange(ctx, start, date)
	if err != nil {
		return DailyChallenge{}, fmt.Errorf("查询历史失败: %w", err)
	}

	totals := map[string]int{}
	dones := map[string]int{}
	for _, r := range rows {
		totals[r.CognitiveLoad]++
		if r.Status == schema.StatusCompleted {
			dones[r.CognitiveLoad]++
		}
	}

	weakest := schema.LoadDeepWork
	weakestRate := 2.0
	for _, load := range schema.CognitiveLoads {
		if totals[load] == 0 {
			continue
		}
		rate := float64(dones[load]) / float64(totals[load])
		if rate < weakestRate {
			weakest, weakestRate = load, rate
		}
	}

	// 挑战奖励按一个中等任务的分值给
	bonus := m.points.TaskPoints(3, weakest, 60, false)

	return DailyChallenge{
		Date:          date,
		CognitiveLoad: weakest,
		Description:   fmt.Sprintf("Complete one %s task today for bonus points.", loadLabel(weakest)),
		BonusPoints:   bonus,
	}, nil
}

// Quote 按语境和日期取一条激励语
func Quote(context, date string) string {
	pool, ok := quotePools[context]
	if !ok {
		pool = quotePools[ContextMorning]
	}
	h := fnv.New32a()
	h.Write([]byte(context + date))
	return pool[h.Sum32()%uint32(len(pool))]
}

// QuoteContext 根据时刻与当日完成率推断语境
func QuoteContext(hour int, completionRate float64) string {
	switch {
	case hour < 12:
		return ContextMorning
	case hour >= 20:
		return ContextEvening
	case completionRate >= 70:
		return ContextWinning
	default:
		return ContextStruggling
	}
}
