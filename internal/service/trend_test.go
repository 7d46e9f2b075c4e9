package service

import (
	"context"
	"math"
	"testing"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/schema"
)

func testTrendConfig() config.TrendConfig {
	return config.TrendConfig{WindowDays: 30, ImprovingSlope: 0.5, DecliningSlope: -0.5}
}

// makeSummaries 从 2026-08-03（周一）起造连续日序
func makeSummaries(netPoints []int, rates []float64) []schema.DailySummary {
	dates := []string{
		"2026-08-03", "2026-08-04", "2026-08-05", "2026-08-06", "2026-08-07",
		"2026-08-08", "2026-08-09", "2026-08-10", "2026-08-11", "2026-08-12",
		"2026-08-13", "2026-08-14", "2026-08-15", "2026-08-16",
	}
	out := make([]schema.DailySummary, len(netPoints))
	for i := range netPoints {
		out[i] = schema.DailySummary{Date: dates[i], NetPoints: netPoints[i], TotalTasks: 1}
		if rates != nil {
			out[i].CompletionRate = rates[i]
		}
	}
	return out
}

func TestTrendTooFewPoints(t *testing.T) {
	a := NewTrendAnalyzer(testTrendConfig())

	for _, summaries := range [][]schema.DailySummary{nil, makeSummaries([]int{10}, nil)} {
		r := a.Analyze(context.Background(), summaries)
		if r.Trend != TrendInsufficientData || r.TrendStrength != 0 {
			t.Fatalf("trend=%s strength=%v, want insufficient_data/0", r.Trend, r.TrendStrength)
		}
	}
}

func TestTrendDirection(t *testing.T) {
	a := NewTrendAnalyzer(testTrendConfig())

	up := a.Analyze(context.Background(), makeSummaries([]int{10, 20, 30, 40, 50}, nil))
	if up.Trend != TrendImproving {
		t.Fatalf("trend = %s, want improving", up.Trend)
	}
	if up.TrendStrength != 1 {
		t.Fatalf("线性序列强度 = %v, want 1", up.TrendStrength)
	}

	down := a.Analyze(context.Background(), makeSummaries([]int{50, 40, 30, 20, 10}, nil))
	if down.Trend != TrendDeclining {
		t.Fatalf("trend = %s, want declining", down.Trend)
	}

	flat := a.Analyze(context.Background(), makeSummaries([]int{30, 30, 30, 30}, nil))
	if flat.Trend != TrendStable || flat.TrendStrength != 0 {
		t.Fatalf("flat trend = %s/%v, want stable/0", flat.Trend, flat.TrendStrength)
	}
}

func TestWeeklyPerformanceOmitsMissingDays(t *testing.T) {
	a := NewTrendAnalyzer(testTrendConfig())

	// 周一 80%，周二 40%，只有两天
	summaries := makeSummaries([]int{10, 10}, []float64{80, 40})
	r := a.Analyze(context.Background(), summaries)

	if len(r.WeeklyPerformance) != 2 {
		t.Fatalf("weekly keys = %v", r.WeeklyPerformance)
	}
	if r.WeeklyPerformance["Monday"] != 80 || r.WeeklyPerformance["Tuesday"] != 40 {
		t.Fatalf("weekly = %v", r.WeeklyPerformance)
	}
	if _, ok := r.WeeklyPerformance["Sunday"]; ok {
		t.Fatalf("无数据的工作日不应出现")
	}
}

func TestMomentumLadder(t *testing.T) {
	tests := []struct {
		name   string
		change float64 // 近 7 天与前 7 天完成率差（比例）
		want   string
	}{
		{"surging 边界", 0.25, MomentumSurging},
		{"accelerating", 0.10, MomentumAccelerating},
		{"steady 上沿", 0.0, MomentumSteady},
		{"steady 下沿", -0.05, MomentumSteady},
		{"slowing", -0.10, MomentumSlowing},
		{"declining", -0.20, MomentumDeclining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 前 7 天固定 50%，后 7 天 50% + change
			rates := make([]float64, 14)
			for i := 0; i < 7; i++ {
				rates[i] = 50
			}
			for i := 7; i < 14; i++ {
				rates[i] = 50 + tt.change*100
			}
			summaries := makeSummaries(make([]int, 14), rates)

			got := computeMomentum(summaries)
			if got.Status != tt.want {
				t.Fatalf("change=%v status=%s, want %s", tt.change, got.Status, tt.want)
			}
			if math.Abs(got.Change-tt.change) > 0.001 {
				t.Fatalf("change = %v, want %v", got.Change, tt.change)
			}
		})
	}
}

func TestMovingAverages(t *testing.T) {
	ma := movingAverages([]float64{10, 20, 30, 40})

	if len(ma.MA3) != 4 || len(ma.MA7) != 4 || len(ma.EMA5) != 4 {
		t.Fatalf("lengths = %d/%d/%d", len(ma.MA3), len(ma.MA7), len(ma.EMA5))
	}
	// 前缀不足窗口时用已有均值
	if ma.MA3[0] != 10 || ma.MA3[1] != 15 || ma.MA3[2] != 20 || ma.MA3[3] != 30 {
		t.Fatalf("MA3 = %v", ma.MA3)
	}
	if ma.MA7[3] != 25 {
		t.Fatalf("MA7[3] = %v, want 25", ma.MA7[3])
	}
	if ma.EMA5[0] != 10 {
		t.Fatalf("EMA5[0] = %v, want 10", ma.EMA5[0])
	}
}

func TestAnomalyDetection(t *testing.T) {
	// 不足 5 天不做统计
	few := detectAnomalies(makeSummaries([]int{10, 10, 10, 100}, nil), []float64{10, 10, 10, 100})
	if few != nil {
		t.Fatalf("4 天就产出异常: %v", few)
	}

	// 构造一个离群日
	net := []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 100}
	summaries := makeSummaries(net, nil)
	ys := make([]float64, len(net))
	for i, v := range net {
		ys[i] = float64(v)
	}
	anomalies := detectAnomalies(summaries, ys)
	if len(anomalies) != 1 {
		t.Fatalf("anomalies = %v, want 1", anomalies)
	}
	if anomalies[0].Direction != "spike" || anomalies[0].NetPoints != 100 {
		t.Fatalf("anomaly = %+v", anomalies[0])
	}
	if anomalies[0].ZScore <= 2 {
		t.Fatalf("z = %v, want > 2", anomalies[0].ZScore)
	}

	// 全相等无异常
	if got := detectAnomalies(makeSummaries([]int{5, 5, 5, 5, 5}, nil), []float64{5, 5, 5, 5, 5}); got != nil {
		t.Fatalf("常数序列产出异常: %v", got)
	}
}
