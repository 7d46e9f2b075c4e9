package service

import (
	"context"
	"fmt"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// 模式类型
const (
	PatternWeeklyVariance = "weekly_variance"
	PatternActiveStreak   = "active_streak"
)

// Pattern 一条被检出的行为模式，各模式独立，可同时触发多条
type Pattern struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Metric      float64 `json:"metric"`
	BestDay     string  `json:"best_day,omitempty"`
	WorstDay    string  `json:"worst_day,omitempty"`
}

// PatternDetector 消费趋势分析的工作日统计与原始汇总序列
type PatternDetector struct {
	cfg config.PatternConfig
}

// NewPatternDetector 创建模式检测器
func NewPatternDetector(cfg config.PatternConfig) *PatternDetector {
	return &PatternDetector{cfg: cfg}
}

// Detect 检测模式，summaries 按日期升序
func (d *PatternDetector) Detect(_ context.Context, weeklyPerf map[string]float64, summaries []schema.DailySummary) []Pattern {
	var patterns []Pattern

	if p, ok := d.detectWeeklyVariance(weeklyPerf); ok {
		patterns = append(patterns, p)
	}
	if p, ok := d.detectStreak(summaries); ok {
		patterns = append(patterns, p)
	}
	return patterns
}

// detectWeeklyVariance 最好与最差工作日完成率差值超过阈值
func (d *PatternDetector) detectWeeklyVariance(weeklyPerf map[string]float64) (Pattern, bool) {
	if len(weeklyPerf) < 2 {
		return Pattern{}, false
	}

	var bestDay, worstDay string
	var best, worst float64
	first := true
	for day, rate := range weeklyPerf {
		if first {
			bestDay, worstDay = day, day
			best, worst = rate, rate
			first = false
			continue
		}
		if rate > best {
			best, bestDay = rate, day
		}
		if rate < worst {
			worst, worstDay = rate, day
		}
	}

	diff := best - worst
	if diff < d.cfg.WeeklyVariancePP {
		return Pattern{}, false
	}
	return Pattern{
		Type: PatternWeeklyVariance,
		Description: fmt.Sprintf("Your completion rate on %s runs %.0f percentage points higher than on %s.",
			bestDay, diff, worstDay),
		Metric:   round1(diff),
		BestDay:  bestDay,
		WorstDay: worstDay,
	}, true
}

// detectStreak 以窗口最后一天为终点、日期连续且完成率 > 0 的最长后缀
func (d *PatternDetector) detectStreak(summaries []schema.DailySummary) (Pattern, bool) {
	streak := 0
	var prevDate string
	for i := len(summaries) - 1; i >= 0; i-- {
		s := summaries[i]
		if s.CompletionRate <= 0 {
			break
		}
		if prevDate != "" {
			next, err := repository.NextDay(s.Date)
			if err != nil || next != prevDate {
				break
			}
		}
		streak++
		prevDate = s.Date
	}

	if streak < d.cfg.StreakMinDays {
		return Pattern{}, false
	}
	return Pattern{
		Type:        PatternActiveStreak,
		Description: fmt.Sprintf("You are on a %d-day active streak. Keep the chain going.", streak),
		Metric:      float64(streak),
	}, true
}
