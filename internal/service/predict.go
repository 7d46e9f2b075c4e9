package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

const (
	predictMinSamples = 5
	predictMaxSamples = 50
	predictFloor      = 0.10
	predictCeiling    = 0.95
	predictNeutral    = 0.5
)

// PredictRequest 完成概率预测输入
type PredictRequest struct {
	Complexity      int    `json:"complexity"`
	CognitiveLoad   string `json:"cognitive_load"`
	ScheduledDate   string `json:"scheduled_date"`
	RolledOverCount int    `json:"rolled_over_count"`
}

// PredictResult 完成概率预测结果
type PredictResult struct {
	Probability float64 `json:"probability"`
	SampleSize  int     `json:"sample_size"`
	Basis       string  `json:"basis"` // history 或 neutral
}

// Predictor 朴素完成概率预测器
// 相似任务历史完成率与同工作日完成率各占一半，顺延次数扣减；
// 样本不足时直接给中性概率而不是硬算。
type Predictor struct {
	scheduleRepo ScheduleRepository
}

// NewPredictor 创建预测器
func NewPredictor(scheduleRepo ScheduleRepository) *Predictor {
	return &Predictor{scheduleRepo: scheduleRepo}
}

// Predict 预测一个任务在指定日期被完成的概率
func (p *Predictor) Predict(ctx context.Context, req PredictRequest) (PredictResult, error) {
	if !schema.IsValidLoad(req.CognitiveLoad) {
		return PredictResult{}, fmt.Errorf("无效认知负荷: %q", req.CognitiveLoad)
	}
	target, err := time.Parse(repository.DateLayout, req.ScheduledDate)
	if err != nil {
		return PredictResult{}, fmt.Errorf("无效日期 %q: %w", req.ScheduledDate, err)
	}

	similar, err := p.scheduleRepo.GetSimilarBefore(ctx, req.Complexity, req.CognitiveLoad, req.ScheduledDate, predictMaxSamples)
	if err != nil {
		return PredictResult{}, fmt.Errorf("查询相似任务失败: %w", err)
	}
	if len(similar) < predictMinSamples {
		return PredictResult{Probability: predictNeutral, SampleSize: len(similar), Basis: "neutral"}, nil
	}

	completed := 0
	for _, row := range similar {
		if row.Status == schema.StatusCompleted {
			completed++
		}
	}
	baseRate := float64(completed) / float64(len(similar))

	dowRate, err := p.weekdayRate(ctx, target.Weekday(), baseRate)
	if err != nil {
		return PredictResult{}, err
	}

	prob := baseRate*0.5 + dowRate*0.5 - 0.1*float64(req.RolledOverCount)
	prob = math.Max(predictFloor, math.Min(predictCeiling, prob))

	return PredictResult{
		Probability: round2(prob),
		SampleSize:  len(similar),
		Basis:       "history",
	}, nil
}

// weekdayRate 目标工作日的历史完成率，无数据时退回 fallback
func (p *Predictor) weekdayRate(ctx context.Context, weekday time.Weekday, fallback float64) (float64, error) {
	counts, err := p.scheduleRepo.GetDailyCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("查询按日统计失败: %w", err)
	}

	var total, completed int
	for _, c := range counts {
		d, err := time.Parse(repository.DateLayout, c.Date)
		if err != nil || d.Weekday() != weekday {
			continue
		}
		total += c.Total
		completed += c.Completed
	}
	if total == 0 {
		return fallback, nil
	}
	return float64(completed) / float64(total), nil
}
