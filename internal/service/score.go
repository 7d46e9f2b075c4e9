package service

import (
	"context"
	"math"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/schema"
)

// ScoreResult 窗口综合生产力评分
type ScoreResult struct {
	Score            int     `json:"score"`
	Rating           string  `json:"rating"`
	Color            string  `json:"color"`
	CompletionPct    float64 `json:"completion_pct"`
	PointsPct        float64 `json:"points_pct"`
	ConsistencyPct   float64 `json:"consistency_pct"`
	PenaltyAvoidPct  float64 `json:"penalty_avoidance_pct"`
	WindowDays       int     `json:"window_days"`
}

// Scorer 四项加权的综合评分器
type Scorer struct {
	cfg    config.ScoringConfig
	points PointsPolicy
}

// NewScorer 创建综合评分器
func NewScorer(cfg config.ScoringConfig, points PointsPolicy) *Scorer {
	return &Scorer{cfg: cfg, points: points}
}

// Score 对窗口内的每日汇总计算综合分
// windowDays 是窗口的名义天数，一致性以它为分母，
// 缺数据的日子按零完成计，而不是把分母缩成有数据的天数。
func (s *Scorer) Score(_ context.Context, summaries []schema.DailySummary, windowDays int) ScoreResult {
	result := ScoreResult{WindowDays: windowDays}

	var totalTasks, completedTasks, earned, penalties int
	daysWithCompletion := 0
	for _, sum := range summaries {
		totalTasks += sum.TotalTasks
		completedTasks += sum.CompletedTasks
		earned += sum.PointsEarned
		penalties += sum.PenaltyPoints
		if sum.CompletedTasks > 0 {
			daysWithCompletion++
		}
	}

	// 完成率
	var completionPct float64
	if totalTasks > 0 {
		completionPct = float64(completedTasks) / float64(totalTasks) * 100
	}

	// 积分达成率：已赚积分相对窗口内全部任务可能的积分
	pointsPossible := s.possiblePoints(summaries)
	var pointsPct float64
	if pointsPossible > 0 {
		pointsPct = math.Min(100, float64(earned)/float64(pointsPossible)*100)
	}

	// 一致性
	var consistencyPct float64
	if windowDays > 0 {
		consistencyPct = float64(daysWithCompletion) / float64(windowDays) * 100
	}

	// 避罚率
	penaltyAvoid := 100.0
	if s.cfg.PenaltyBudget > 0 {
		penaltyAvoid = math.Max(0, 1-float64(penalties)/float64(s.cfg.PenaltyBudget)) * 100
	}

	weighted := s.cfg.CompletionWeight*completionPct +
		s.cfg.PointsWeight*pointsPct +
		s.cfg.ConsistencyWeight*consistencyPct +
		s.cfg.PenaltyWeight*penaltyAvoid

	result.Score = int(math.Round(math.Max(0, math.Min(100, weighted))))
	result.Rating, result.Color = scoreRating(result.Score)
	result.CompletionPct = round1(completionPct)
	result.PointsPct = round1(pointsPct)
	result.ConsistencyPct = round1(consistencyPct)
	result.PenaltyAvoidPct = round1(penaltyAvoid)
	return result
}

// possiblePoints 把窗口内每个任务都视为完成时能拿到的积分
// 汇总缓存不带逐任务明细，用已实现均值回推：
// 完成过任务时按 每完成任务平均分 × 总任务数 估计，
// 一个任务都没完成时以全部已排任务为上限（已赚为 0，比率为 0）。
func (s *Scorer) possiblePoints(summaries []schema.DailySummary) int {
	var earned, completed, total int
	for _, sum := range summaries {
		earned += sum.PointsEarned
		completed += sum.CompletedTasks
		total += sum.TotalTasks
	}
	if completed == 0 {
		return total // 非零即可，避免 0 完成时比率未定义
	}
	avg := float64(earned) / float64(completed)
	return int(math.Round(avg * float64(total)))
}

// scoreRating 评级与配色是展示提示，不是 UI
func scoreRating(score int) (string, string) {
	switch {
	case score >= 90:
		return "Exceptional", "green"
	case score >= 75:
		return "Great", "blue"
	case score >= 60:
		return "Good", "yellow"
	case score >= 40:
		return "Fair", "orange"
	default:
		return "Needs Improvement", "red"
	}
}
