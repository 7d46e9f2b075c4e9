package service

import (
	"context"
	"testing"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

func testBurnoutConfig() config.BurnoutConfig {
	return config.BurnoutConfig{
		WindowDays:        14,
		MinActiveDays:     3,
		DeclineHighPP:     20,
		DeclineMediumPP:   10,
		RolloverHighRate:  0.4,
		RolloverMedRate:   0.25,
		DeepWorkHighRate:  0.6,
		DeepWorkMedRate:   0.4,
		WeekendHighRate:   0.6,
		WeekendMedRate:    0.3,
		EstimateDeviation: 0.5,
		StagnationDays:    3,
	}
}

func activeDays(n int, rate float64) []schema.DailySummary {
	dates := []string{
		"2026-08-03", "2026-08-04", "2026-08-05", "2026-08-06", "2026-08-07",
		"2026-08-08", "2026-08-09", "2026-08-10", "2026-08-11", "2026-08-12",
	}
	out := make([]schema.DailySummary, n)
	for i := 0; i < n; i++ {
		out[i] = schema.DailySummary{
			Date: dates[i], TotalTasks: 2, CompletedTasks: 1, CompletionRate: rate,
		}
	}
	return out
}

func TestBurnoutInsufficientData(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())

	result := a.Analyze(context.Background(), activeDays(2, 50), nil)
	if result.RiskLevel != RiskInsufficientData {
		t.Fatalf("risk = %s, want insufficient_data", result.RiskLevel)
	}
	// 数据不足是显式标记而不是零分
	if result.RiskScore != 0 || len(result.Factors) != 0 {
		t.Fatalf("insufficient result scored: %+v", result)
	}
	if result.HealthMetrics.DaysAnalyzed != 2 {
		t.Fatalf("days = %d, want 2", result.HealthMetrics.DaysAnalyzed)
	}
}

func TestBurnoutLowRisk(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())

	summaries := activeDays(7, 80)
	rows := []repository.TaskRow{
		{ScheduledDate: "2026-08-03", Status: schema.StatusCompleted,
			CognitiveLoad: schema.LoadAdmin, TimeEstimate: 60, ActualTime: intPtr(60)},
		{ScheduledDate: "2026-08-04", Status: schema.StatusCompleted,
			CognitiveLoad: schema.LoadActiveWork, TimeEstimate: 30, ActualTime: intPtr(30)},
	}

	result := a.Analyze(context.Background(), summaries, rows)
	if result.RiskLevel != RiskLow {
		t.Fatalf("risk = %s (%d), want low", result.RiskLevel, result.RiskScore)
	}
	if len(result.Factors) != 0 {
		t.Fatalf("factors = %v", result.Factors)
	}
	// 低风险也给一条保持节奏的建议
	if len(result.Recommendations) != 1 || result.Recommendations[0].Priority != "low" {
		t.Fatalf("recommendations = %v", result.Recommendations)
	}
}

func TestBurnoutRolloverFactor(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())
	summaries := activeDays(5, 50)

	// 5 个实例 3 个被顺延过：60% ≥ 40% 高档
	rows := make([]repository.TaskRow, 5)
	for i := range rows {
		rows[i] = repository.TaskRow{
			ScheduledDate: "2026-08-05", Status: schema.StatusPending,
			CognitiveLoad: schema.LoadAdmin,
		}
		if i < 3 {
			rows[i].RolledOverCount = 1
		}
	}

	result := a.Analyze(context.Background(), summaries, rows)
	f := findFactor(result.Factors, "rollover_rate")
	if f == nil {
		t.Fatalf("rollover factor missing: %v", result.Factors)
	}
	if f.Severity != "high" || f.Contribution != 20 {
		t.Fatalf("factor = %+v", f)
	}
}

func TestBurnoutDeclineFactor(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())

	// 前半 90% 后半 60%：下滑 30pp，高档 25 分
	summaries := activeDays(8, 0)
	for i := range summaries {
		if i < 4 {
			summaries[i].CompletionRate = 90
		} else {
			summaries[i].CompletionRate = 60
		}
	}

	result := a.Analyze(context.Background(), summaries, nil)
	f := findFactor(result.Factors, "declining_performance")
	if f == nil || f.Severity != "high" || f.Contribution != 25 {
		t.Fatalf("decline factor = %+v", f)
	}
}

func TestBurnoutDeepWorkAndWeekendFactors(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())
	summaries := activeDays(5, 50)

	// 全部完成任务都是周末上的 deep_work：两个因子都到高档
	rows := []repository.TaskRow{
		{ScheduledDate: "2026-08-08", Status: schema.StatusCompleted, CognitiveLoad: schema.LoadDeepWork}, // 周六
		{ScheduledDate: "2026-08-09", Status: schema.StatusCompleted, CognitiveLoad: schema.LoadDeepWork}, // 周日
	}

	result := a.Analyze(context.Background(), summaries, rows)
	if f := findFactor(result.Factors, "deep_work_overload"); f == nil || f.Severity != "high" {
		t.Fatalf("deep work factor = %+v", f)
	}
	if f := findFactor(result.Factors, "weekend_work"); f == nil || f.Severity != "high" {
		t.Fatalf("weekend factor = %+v", f)
	}
	if result.HealthMetrics.WeekendWorkRate != 1 {
		t.Fatalf("weekend rate = %v, want 1", result.HealthMetrics.WeekendWorkRate)
	}
}

func TestBurnoutStagnationFactor(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())

	// 最近 3 天零完成但有待办
	summaries := activeDays(6, 50)
	for i := 3; i < 6; i++ {
		summaries[i].CompletedTasks = 0
		summaries[i].PendingTasks = 2
		summaries[i].CompletionRate = 0
	}

	result := a.Analyze(context.Background(), summaries, nil)
	if f := findFactor(result.Factors, "recent_stagnation"); f == nil || f.Contribution != 10 {
		t.Fatalf("stagnation factor = %+v", f)
	}
}

func TestBurnoutEstimationFactor(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())
	summaries := activeDays(5, 50)

	// 实际是预估的两倍：偏差 1.0 ≥ 0.5
	rows := []repository.TaskRow{
		{ScheduledDate: "2026-08-05", Status: schema.StatusCompleted,
			CognitiveLoad: schema.LoadAdmin, TimeEstimate: 30, ActualTime: intPtr(60)},
	}

	result := a.Analyze(context.Background(), summaries, rows)
	if f := findFactor(result.Factors, "estimation_inaccuracy"); f == nil || f.Contribution != 10 {
		t.Fatalf("estimation factor = %+v", f)
	}
}

func TestBurnoutSevereAddsUrgentRecommendation(t *testing.T) {
	a := NewBurnoutAnalyzer(testBurnoutConfig())

	// 叠满因子把分数推过 75%
	summaries := activeDays(8, 0)
	for i := range summaries {
		if i < 4 {
			summaries[i].CompletionRate = 90
		} else {
			summaries[i].CompletedTasks = 0
			summaries[i].PendingTasks = 2
			summaries[i].CompletionRate = 0
		}
	}
	rows := []repository.TaskRow{
		{ScheduledDate: "2026-08-08", Status: schema.StatusCompleted,
			CognitiveLoad: schema.LoadDeepWork, RolledOverCount: 2, TimeEstimate: 30, ActualTime: intPtr(90)},
		{ScheduledDate: "2026-08-09", Status: schema.StatusCompleted,
			CognitiveLoad: schema.LoadDeepWork, RolledOverCount: 1, TimeEstimate: 30, ActualTime: intPtr(90)},
	}

	result := a.Analyze(context.Background(), summaries, rows)
	if result.RiskLevel != RiskSevere {
		t.Fatalf("risk = %s (%d/%d)", result.RiskLevel, result.RiskScore, result.MaxScore)
	}
	if len(result.Recommendations) == 0 || result.Recommendations[0].Priority != "urgent" {
		t.Fatalf("urgent recommendation missing: %v", result.Recommendations)
	}
}

func findFactor(factors []BurnoutFactor, name string) *BurnoutFactor {
	for i := range factors {
		if factors[i].Name == name {
			return &factors[i]
		}
	}
	return nil
}
