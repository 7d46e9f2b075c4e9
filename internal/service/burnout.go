package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// 风险等级
const (
	RiskLow              = "low"
	RiskModerate         = "moderate"
	RiskHigh             = "high"
	RiskSevere           = "severe"
	RiskInsufficientData = "insufficient_data"
)

// 六个因子的满分权重，合计 100
const (
	burnoutMaxScore      = 100
	declineHighScore     = 25
	declineMediumScore   = 15
	rolloverHighScore    = 20
	rolloverMediumScore  = 10
	deepWorkHighScore    = 20
	deepWorkMediumScore  = 10
	weekendHighScore     = 15
	weekendMediumScore   = 8
	estimationScore      = 10
	stagnationScore      = 10
)

// BurnoutFactor 单个触发因子
type BurnoutFactor struct {
	Name           string `json:"name"`
	Severity       string `json:"severity"` // high 或 medium
	Contribution   int    `json:"contribution"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// HealthMetrics 窗口内的健康指标
type HealthMetrics struct {
	CompletionRate  float64 `json:"completion_rate"`
	RolloverRate    float64 `json:"rollover_rate"`
	WeekendWorkRate float64 `json:"weekend_work_rate"`
	DaysAnalyzed    int     `json:"days_analyzed"`
}

// Recommendation 带优先级的建议
type Recommendation struct {
	Priority string `json:"priority"` // urgent/high/medium/low
	Message  string `json:"message"`
}

// BurnoutResult 倦怠风险分析结果
// 数据不足时 RiskLevel 为 insufficient_data 且不给分数，
// 零分和“无法判断”是两回事。
type BurnoutResult struct {
	RiskScore       int              `json:"risk_score"`
	MaxScore        int              `json:"max_score"`
	RiskLevel       string           `json:"risk_level"`
	Factors         []BurnoutFactor  `json:"factors"`
	HealthMetrics   HealthMetrics    `json:"health_metrics"`
	Recommendations []Recommendation `json:"recommendations"`
}

// BurnoutAnalyzer 六因子倦怠风险分析器
// 每个因子是独立的打分函数，由 Analyze 汇总，互不耦合。
type BurnoutAnalyzer struct {
	cfg config.BurnoutConfig
}

// NewBurnoutAnalyzer 创建倦怠风险分析器
func NewBurnoutAnalyzer(cfg config.BurnoutConfig) *BurnoutAnalyzer {
	return &BurnoutAnalyzer{cfg: cfg}
}

// Analyze 对窗口内日汇总与任务实例做风险评估
// summaries 与 rows 覆盖同一日期区间，按日期升序。
func (a *BurnoutAnalyzer) Analyze(_ context.Context, summaries []schema.DailySummary, rows []repository.TaskRow) BurnoutResult {
	result := BurnoutResult{
		MaxScore:      burnoutMaxScore,
		HealthMetrics: healthMetrics(summaries, rows),
	}

	activeDays := 0
	for _, s := range summaries {
		if s.TotalTasks > 0 {
			activeDays++
		}
	}
	if activeDays < a.cfg.MinActiveDays {
		result.RiskLevel = RiskInsufficientData
		return result
	}

	factors := []func([]schema.DailySummary, []repository.TaskRow) (int, *BurnoutFactor){
		a.declineFactor,
		a.rolloverFactor,
		a.deepWorkFactor,
		a.weekendFactor,
		a.estimationFactor,
		a.stagnationFactor,
	}
	for _, factor := range factors {
		contribution, record := factor(summaries, rows)
		result.RiskScore += contribution
		if record != nil {
			result.Factors = append(result.Factors, *record)
		}
	}

	ratio := float64(result.RiskScore) / float64(result.MaxScore) * 100
	switch {
	case ratio < 25:
		result.RiskLevel = RiskLow
	case ratio < 50:
		result.RiskLevel = RiskModerate
	case ratio < 75:
		result.RiskLevel = RiskHigh
	default:
		result.RiskLevel = RiskSevere
	}

	result.Recommendations = buildRecommendations(result.RiskLevel, result.Factors)
	return result
}

// declineFactor 后半窗口完成率相对前半窗口的下滑幅度（百分点）
func (a *BurnoutAnalyzer) declineFactor(summaries []schema.DailySummary, _ []repository.TaskRow) (int, *BurnoutFactor) {
	if len(summaries) < 4 {
		return 0, nil
	}
	mid := len(summaries) / 2
	drop := meanRate(summaries[:mid]) - meanRate(summaries[mid:])

	switch {
	case drop >= a.cfg.DeclineHighPP:
		return declineHighScore, &BurnoutFactor{
			Name:           "declining_performance",
			Severity:       "high",
			Contribution:   declineHighScore,
			Description:    fmt.Sprintf("Completion rate dropped %.0f percentage points over the window.", drop),
			Recommendation: "Reduce your daily task count until completion recovers.",
		}
	case drop >= a.cfg.DeclineMediumPP:
		return declineMediumScore, &BurnoutFactor{
			Name:           "declining_performance",
			Severity:       "medium",
			Contribution:   declineMediumScore,
			Description:    fmt.Sprintf("Completion rate slipped %.0f percentage points over the window.", drop),
			Recommendation: "Watch your workload; the trend is heading the wrong way.",
		}
	}
	return 0, nil
}

// rolloverFactor 被顺延过的实例占比
func (a *BurnoutAnalyzer) rolloverFactor(_ []schema.DailySummary, rows []repository.TaskRow) (int, *BurnoutFactor) {
	if len(rows) == 0 {
		return 0, nil
	}
	rolled := 0
	for _, r := range rows {
		if r.RolledOverCount > 0 {
			rolled++
		}
	}
	rate := float64(rolled) / float64(len(rows))

	switch {
	case rate >= a.cfg.RolloverHighRate:
		return rolloverHighScore, &BurnoutFactor{
			Name:           "rollover_rate",
			Severity:       "high",
			Contribution:   rolloverHighScore,
			Description:    fmt.Sprintf("%.0f%% of your scheduled tasks have been pushed to a later day.", rate*100),
			Recommendation: "Schedule fewer tasks per day and finish what you start.",
		}
	case rate >= a.cfg.RolloverMedRate:
		return rolloverMediumScore, &BurnoutFactor{
			Name:           "rollover_rate",
			Severity:       "medium",
			Contribution:   rolloverMediumScore,
			Description:    fmt.Sprintf("%.0f%% of your scheduled tasks have rolled over at least once.", rate*100),
			Recommendation: "Trim tomorrow's plan before adding anything new.",
		}
	}
	return 0, nil
}

// deepWorkFactor 已完成任务中 deep_work 占比过高
func (a *BurnoutAnalyzer) deepWorkFactor(_ []schema.DailySummary, rows []repository.TaskRow) (int, *BurnoutFactor) {
	completed, deep := 0, 0
	for _, r := range rows {
		if r.Status != schema.StatusCompleted {
			continue
		}
		completed++
		if r.CognitiveLoad == schema.LoadDeepWork {
			deep++
		}
	}
	if completed == 0 {
		return 0, nil
	}
	rate := float64(deep) / float64(completed)

	switch {
	case rate >= a.cfg.DeepWorkHighRate:
		return deepWorkHighScore, &BurnoutFactor{
			Name:           "deep_work_overload",
			Severity:       "high",
			Contribution:   deepWorkHighScore,
			Description:    fmt.Sprintf("%.0f%% of completed tasks were deep work.", rate*100),
			Recommendation: "Mix in lighter admin or active work between deep sessions.",
		}
	case rate >= a.cfg.DeepWorkMedRate:
		return deepWorkMediumScore, &BurnoutFactor{
			Name:           "deep_work_overload",
			Severity:       "medium",
			Contribution:   deepWorkMediumScore,
			Description:    fmt.Sprintf("%.0f%% of completed tasks were deep work.", rate*100),
			Recommendation: "Keep an eye on your deep work ratio.",
		}
	}
	return 0, nil
}

// weekendFactor 周末完成的任务占比
func (a *BurnoutAnalyzer) weekendFactor(_ []schema.DailySummary, rows []repository.TaskRow) (int, *BurnoutFactor) {
	completed, weekend := 0, 0
	for _, r := range rows {
		if r.Status != schema.StatusCompleted {
			continue
		}
		completed++
		if isWeekend(r.ScheduledDate) {
			weekend++
		}
	}
	if completed == 0 {
		return 0, nil
	}
	rate := float64(weekend) / float64(completed)

	switch {
	case rate >= a.cfg.WeekendHighRate:
		return weekendHighScore, &BurnoutFactor{
			Name:           "weekend_work",
			Severity:       "high",
			Contribution:   weekendHighScore,
			Description:    fmt.Sprintf("%.0f%% of completed work landed on weekends.", rate*100),
			Recommendation: "Protect at least one full rest day per week.",
		}
	case rate >= a.cfg.WeekendMedRate:
		return weekendMediumScore, &BurnoutFactor{
			Name:           "weekend_work",
			Severity:       "medium",
			Contribution:   weekendMediumScore,
			Description:    fmt.Sprintf("%.0f%% of completed work landed on weekends.", rate*100),
			Recommendation: "Try to keep weekends lighter than weekdays.",
		}
	}
	return 0, nil
}

// estimationFactor 实际耗时与预估的平均偏差比例
func (a *BurnoutAnalyzer) estimationFactor(_ []schema.DailySummary, rows []repository.TaskRow) (int, *BurnoutFactor) {
	var sum float64
	n := 0
	for _, r := range rows {
		if r.Status != schema.StatusCompleted || r.ActualTime == nil || r.TimeEstimate <= 0 {
			continue
		}
		sum += math.Abs(float64(*r.ActualTime)/float64(r.TimeEstimate) - 1)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	deviation := sum / float64(n)
	if deviation < a.cfg.EstimateDeviation {
		return 0, nil
	}
	return estimationScore, &BurnoutFactor{
		Name:           "estimation_inaccuracy",
		Severity:       "medium",
		Contribution:   estimationScore,
		Description:    fmt.Sprintf("Your time estimates are off by %.0f%% on average.", deviation*100),
		Recommendation: "Track actual time for a week and recalibrate your estimates.",
	}
}

// stagnationFactor 最近 N 天零完成但仍有待办
func (a *BurnoutAnalyzer) stagnationFactor(summaries []schema.DailySummary, _ []repository.TaskRow) (int, *BurnoutFactor) {
	if len(summaries) < a.cfg.StagnationDays {
		return 0, nil
	}
	recent := summaries[len(summaries)-a.cfg.StagnationDays:]
	completions, pending := 0, 0
	for _, s := range recent {
		completions += s.CompletedTasks
		pending += s.PendingTasks
	}
	if completions > 0 || pending == 0 {
		return 0, nil
	}
	return stagnationScore, &BurnoutFactor{
		Name:           "recent_stagnation",
		Severity:       "medium",
		Contribution:   stagnationScore,
		Description:    fmt.Sprintf("No completions in the last %d days while tasks are still pending.", a.cfg.StagnationDays),
		Recommendation: "Pick the smallest pending task and finish it today to restart momentum.",
	}
}

func healthMetrics(summaries []schema.DailySummary, rows []repository.TaskRow) HealthMetrics {
	m := HealthMetrics{DaysAnalyzed: len(summaries)}

	total, completed := 0, 0
	for _, s := range summaries {
		total += s.TotalTasks
		completed += s.CompletedTasks
	}
	if total > 0 {
		m.CompletionRate = round1(float64(completed) / float64(total) * 100)
	}

	if len(rows) > 0 {
		rolled, weekendDone, done := 0, 0, 0
		for _, r := range rows {
			if r.RolledOverCount > 0 {
				rolled++
			}
			if r.Status == schema.StatusCompleted {
				done++
				if isWeekend(r.ScheduledDate) {
					weekendDone++
				}
			}
		}
		m.RolloverRate = round2(float64(rolled) / float64(len(rows)))
		if done > 0 {
			m.WeekendWorkRate = round2(float64(weekendDone) / float64(done))
		}
	}
	return m
}

// buildRecommendations 按因子严重度排优先级，总体风险高时追加紧急建议
func buildRecommendations(riskLevel string, factors []BurnoutFactor) []Recommendation {
	var recs []Recommendation

	if riskLevel == RiskSevere {
		recs = append(recs, Recommendation{
			Priority: "urgent",
			Message:  "Multiple burnout signals are firing at once. Plan a recovery day this week.",
		})
	}
	for _, f := range factors {
		priority := "medium"
		if f.Severity == "high" {
			priority = "high"
		}
		recs = append(recs, Recommendation{Priority: priority, Message: f.Recommendation})
	}
	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Priority: "low",
			Message:  "Your workload looks sustainable. Keep the current rhythm.",
		})
	}
	return recs
}

func isWeekend(date string) bool {
	d, err := time.Parse(repository.DateLayout, date)
	if err != nil {
		return false
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
