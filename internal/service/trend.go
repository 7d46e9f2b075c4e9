package service

import (
	"context"
	"math"
	"time"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// 趋势方向
// 数据不足两天时返回 insufficient_data，调用方据此区分“无趋势”和“无法判断”。
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// 动量阶梯
const (
	MomentumSurging      = "surging"
	MomentumAccelerating = "accelerating"
	MomentumSteady       = "steady"
	MomentumSlowing      = "slowing"
	MomentumDeclining    = "declining"
)

// TrendResult 窗口趋势分析结果
type TrendResult struct {
	Trend             string             `json:"trend"`
	TrendStrength     float64            `json:"trend_strength"`
	WeeklyPerformance map[string]float64 `json:"weekly_performance"`
	Momentum          MomentumResult     `json:"momentum"`
	MovingAverages    MovingAverages     `json:"moving_averages"`
	Anomalies         []Anomaly          `json:"anomalies"`
	DaysAnalyzed      int                `json:"days_analyzed"`
}

// MomentumResult 近七天与前七天完成率对比
type MomentumResult struct {
	Status string  `json:"status"`
	Change float64 `json:"change"`
}

// MovingAverages 净分数滑动均线序列，与输入日序对齐
type MovingAverages struct {
	MA3  []float64 `json:"ma3"`
	MA7  []float64 `json:"ma7"`
	EMA5 []float64 `json:"ema5"`
}

// Anomaly 偏离均值超过两个标准差的日子
type Anomaly struct {
	Date      string  `json:"date"`
	NetPoints int     `json:"net_points"`
	ZScore    float64 `json:"z_score"`
	Direction string  `json:"direction"` // spike 或 dip
}

// TrendAnalyzer 基于每日汇总序列的趋势分析器，无状态
type TrendAnalyzer struct {
	cfg config.TrendConfig
}

// NewTrendAnalyzer 创建趋势分析器
func NewTrendAnalyzer(cfg config.TrendConfig) *TrendAnalyzer {
	return &TrendAnalyzer{cfg: cfg}
}

// Analyze 对按日期升序的汇总序列做完整趋势分析
func (a *TrendAnalyzer) Analyze(_ context.Context, summaries []schema.DailySummary) TrendResult {
	result := TrendResult{
		Trend:             TrendInsufficientData,
		WeeklyPerformance: weeklyPerformance(summaries),
		DaysAnalyzed:      len(summaries),
	}

	net := make([]float64, len(summaries))
	for i, s := range summaries {
		net[i] = float64(s.NetPoints)
	}

	if len(summaries) >= 2 {
		slope := linearSlope(net)
		result.Trend = classifySlope(slope, a.cfg.ImprovingSlope, a.cfg.DecliningSlope)
		result.TrendStrength = trendStrength(slope, net)
	}

	result.Momentum = computeMomentum(summaries)
	result.MovingAverages = movingAverages(net)
	result.Anomalies = detectAnomalies(summaries, net)
	return result
}

// linearSlope 最小二乘拟合斜率，x 取 0..n-1
func linearSlope(ys []float64) float64 {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func classifySlope(slope, improving, declining float64) string {
	switch {
	case slope > improving:
		return TrendImproving
	case slope < declining:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// trendStrength 斜率幅度按数据极差归一化到 [0,1]
func trendStrength(slope float64, ys []float64) float64 {
	min, max := ys[0], ys[0]
	for _, y := range ys {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	rng := max - min
	if rng == 0 {
		return 0
	}
	strength := math.Abs(slope) * float64(len(ys)-1) / rng
	if strength > 1 {
		strength = 1
	}
	return round2(strength)
}

// weeklyPerformance 各工作日的平均完成率，无数据的工作日不出现在结果里
func weeklyPerformance(summaries []schema.DailySummary) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, s := range summaries {
		d, err := time.Parse(repository.DateLayout, s.Date)
		if err != nil {
			continue
		}
		day := d.Weekday().String()
		sums[day] += s.CompletionRate
		counts[day]++
	}
	perf := make(map[string]float64, len(sums))
	for day, sum := range sums {
		perf[day] = round1(sum / float64(counts[day]))
	}
	return perf
}

// computeMomentum 近 7 天与前 7 天完成率均值之差（比例，非百分比）
func computeMomentum(summaries []schema.DailySummary) MomentumResult {
	if len(summaries) < 2 {
		return MomentumResult{Status: MomentumSteady}
	}

	split := len(summaries) - 7
	if split < 0 {
		split = 0
	}
	recent := summaries[split:]
	prevStart := split - 7
	if prevStart < 0 {
		prevStart = 0
	}
	previous := summaries[prevStart:split]
	if len(previous) == 0 {
		return MomentumResult{Status: MomentumSteady}
	}

	change := round2((meanRate(recent) - meanRate(previous)) / 100)

	status := MomentumDeclining
	switch {
	case change >= 0.25:
		status = MomentumSurging
	case change >= 0.10:
		status = MomentumAccelerating
	case change >= -0.05:
		status = MomentumSteady
	case change >= -0.15:
		status = MomentumSlowing
	}
	return MomentumResult{Status: status, Change: change}
}

func meanRate(summaries []schema.DailySummary) float64 {
	if len(summaries) == 0 {
		return 0
	}
	var sum float64
	for _, s := range summaries {
		sum += s.CompletionRate
	}
	return sum / float64(len(summaries))
}

// movingAverages 窗口不足时用现有前缀均值
func movingAverages(net []float64) MovingAverages {
	return MovingAverages{
		MA3:  simpleMA(net, 3),
		MA7:  simpleMA(net, 7),
		EMA5: exponentialMA(net, 5),
	}
}

func simpleMA(ys []float64, window int) []float64 {
	out := make([]float64, len(ys))
	var sum float64
	for i, y := range ys {
		sum += y
		if i >= window {
			sum -= ys[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = round1(sum / float64(n))
	}
	return out
}

func exponentialMA(ys []float64, span int) []float64 {
	out := make([]float64, len(ys))
	alpha := 2.0 / float64(span+1)
	for i, y := range ys {
		if i == 0 {
			out[i] = round1(y)
			continue
		}
		out[i] = round1(alpha*y + (1-alpha)*out[i-1])
	}
	return out
}

// detectAnomalies 至少 5 天才有统计意义
func detectAnomalies(summaries []schema.DailySummary, net []float64) []Anomaly {
	if len(net) < 5 {
		return nil
	}

	var sum float64
	for _, y := range net {
		sum += y
	}
	mean := sum / float64(len(net))

	var sqSum float64
	for _, y := range net {
		sqSum += (y - mean) * (y - mean)
	}
	std := math.Sqrt(sqSum / float64(len(net)))
	if std == 0 {
		return nil
	}

	var anomalies []Anomaly
	for i, y := range net {
		z := (y - mean) / std
		if math.Abs(z) > 2 {
			direction := "spike"
			if z < 0 {
				direction = "dip"
			}
			anomalies = append(anomalies, Anomaly{
				Date:      summaries[i].Date,
				NetPoints: summaries[i].NetPoints,
				ZScore:    round2(z),
				Direction: direction,
			})
		}
	}
	return anomalies
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
