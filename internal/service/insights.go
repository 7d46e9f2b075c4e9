package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// 洞察级别
const (
	InsightWarning = "warning"
	InsightInfo    = "info"
	InsightSuccess = "success"
)

// Insight 一条自然语言洞察
type Insight struct {
	Type     string  `json:"type"` // warning/info/success
	Category string  `json:"category"`
	Message  string  `json:"message"`
	Metric   float64 `json:"metric,omitempty"`
}

// InsightsGenerator 规则式洞察生成器
// 每条规则独立判定，最多产出一条洞察；规则之间没有先后依赖，
// 输出只按级别排序（warning 在前，success 在后）。
type InsightsGenerator struct {
	cfg config.InsightsConfig
}

// NewInsightsGenerator 创建洞察生成器
func NewInsightsGenerator(cfg config.InsightsConfig) *InsightsGenerator {
	return &InsightsGenerator{cfg: cfg}
}

// Generate 基于其他分析器的输出生成洞察
func (g *InsightsGenerator) Generate(_ context.Context, summaries []schema.DailySummary, rows []repository.TaskRow, trend TrendResult, patterns []Pattern) []Insight {
	var insights []Insight

	appendIf := func(i *Insight) {
		if i != nil {
			insights = append(insights, *i)
		}
	}

	appendIf(g.completionRule(summaries))
	appendIf(g.loadStruggleRule(rows))
	appendIf(g.estimationRule(rows))
	appendIf(g.rolloverRule(rows))
	appendIf(g.energyRule(trend.WeeklyPerformance, patterns))
	appendIf(g.streakRule(patterns))

	sort.SliceStable(insights, func(a, b int) bool {
		return insightRank(insights[a].Type) < insightRank(insights[b].Type)
	})
	return insights
}

func insightRank(t string) int {
	switch t {
	case InsightWarning:
		return 0
	case InsightInfo:
		return 1
	default:
		return 2
	}
}

// completionRule 窗口完成率过低或亮眼
func (g *InsightsGenerator) completionRule(summaries []schema.DailySummary) *Insight {
	var total, completed int
	for _, s := range summaries {
		total += s.TotalTasks
		completed += s.CompletedTasks
	}
	if total == 0 {
		return nil
	}
	rate := float64(completed) / float64(total) * 100

	if rate < g.cfg.LowCompletionPct {
		return &Insight{
			Type:     InsightWarning,
			Category: "completion",
			Message:  fmt.Sprintf("You are completing only %.0f%% of scheduled tasks. Try planning fewer tasks per day.", rate),
			Metric:   round1(rate),
		}
	}
	if rate > g.cfg.HighCompletionPct {
		return &Insight{
			Type:     InsightSuccess,
			Category: "completion",
			Message:  fmt.Sprintf("Excellent follow-through: %.0f%% of scheduled tasks completed.", rate),
			Metric:   round1(rate),
		}
	}
	return nil
}

// loadStruggleRule 某类负荷完成率过低（样本量足够才判定）
func (g *InsightsGenerator) loadStruggleRule(rows []repository.TaskRow) *Insight {
	totals := map[string]int{}
	dones := map[string]int{}
	for _, r := range rows {
		totals[r.CognitiveLoad]++
		if r.Status == schema.StatusCompleted {
			dones[r.CognitiveLoad]++
		}
	}

	worstLoad := ""
	worstRate := 100.0
	for _, load := range schema.CognitiveLoads {
		if totals[load] < g.cfg.LoadMinSamples {
			continue
		}
		rate := float64(dones[load]) / float64(totals[load]) * 100
		if rate < g.cfg.LoadStrugglePct && rate < worstRate {
			worstLoad, worstRate = load, rate
		}
	}
	if worstLoad == "" {
		return nil
	}
	return &Insight{
		Type:     InsightWarning,
		Category: "cognitive_load",
		Message:  fmt.Sprintf("You finish only %.0f%% of your %s tasks. Break them into smaller pieces or schedule them at your best hours.", worstRate, loadLabel(worstLoad)),
		Metric:   round1(worstRate),
	}
}

// estimationRule 总体 实际/预估 比例偏差
func (g *InsightsGenerator) estimationRule(rows []repository.TaskRow) *Insight {
	var actual, estimate int
	for _, r := range rows {
		if r.Status != schema.StatusCompleted || r.ActualTime == nil || r.TimeEstimate <= 0 {
			continue
		}
		actual += *r.ActualTime
		estimate += r.TimeEstimate
	}
	if estimate == 0 {
		return nil
	}
	ratio := float64(actual) / float64(estimate)

	if ratio > g.cfg.UnderestimateRatio {
		return &Insight{
			Type:     InsightWarning,
			Category: "estimation",
			Message:  fmt.Sprintf("Tasks take about %.1fx longer than estimated. Pad your estimates before committing.", ratio),
			Metric:   round2(ratio),
		}
	}
	if ratio > 0 && ratio < g.cfg.OverestimateRatio {
		return &Insight{
			Type:     InsightInfo,
			Category: "estimation",
			Message:  fmt.Sprintf("You finish tasks in about %.0f%% of the estimated time. You can plan more ambitiously.", ratio*100),
			Metric:   round2(ratio),
		}
	}
	return nil
}

// rolloverRule 平均顺延次数过高
func (g *InsightsGenerator) rolloverRule(rows []repository.TaskRow) *Insight {
	if len(rows) == 0 {
		return nil
	}
	var total int
	for _, r := range rows {
		total += r.RolledOverCount
	}
	avg := float64(total) / float64(len(rows))
	if avg <= g.cfg.RolloverAvg {
		return nil
	}
	return &Insight{
		Type:     InsightWarning,
		Category: "rollover",
		Message:  fmt.Sprintf("Tasks roll over %.1f times on average before getting done. Commit to fewer tasks and clear the backlog.", avg),
		Metric:   round2(avg),
	}
}

// energyRule 工作日节律：完成率差异够大时指出最佳日
func (g *InsightsGenerator) energyRule(weeklyPerf map[string]float64, patterns []Pattern) *Insight {
	for _, p := range patterns {
		if p.Type != PatternWeeklyVariance {
			continue
		}
		return &Insight{
			Type:     InsightInfo,
			Category: "energy",
			Message:  fmt.Sprintf("%s is your strongest day (%.0f%% completion). Schedule demanding work there.", p.BestDay, weeklyPerf[p.BestDay]),
			Metric:   p.Metric,
		}
	}
	return nil
}

// streakRule 连续记录庆祝
func (g *InsightsGenerator) streakRule(patterns []Pattern) *Insight {
	for _, p := range patterns {
		if p.Type != PatternActiveStreak {
			continue
		}
		return &Insight{
			Type:     InsightSuccess,
			Category: "streak",
			Message:  fmt.Sprintf("%.0f days of consistent progress. Momentum compounds.", p.Metric),
			Metric:   p.Metric,
		}
	}
	return nil
}
