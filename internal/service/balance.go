package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// BalanceResult 认知负荷均衡结果
type BalanceResult struct {
	Score           float64            `json:"score"`
	Balanced        bool               `json:"balanced"`
	Actual          map[string]float64 `json:"actual"` // 各负荷类别实际占比
	Target          map[string]float64 `json:"target"`
	Recommendations []string           `json:"recommendations"`
}

// BalanceAnalyzer 对比任务集合的负荷分布与目标分布
type BalanceAnalyzer struct {
	cfg config.BalanceConfig
}

// NewBalanceAnalyzer 创建负荷均衡分析器
func NewBalanceAnalyzer(cfg config.BalanceConfig) *BalanceAnalyzer {
	return &BalanceAnalyzer{cfg: cfg}
}

// Analyze 计算均衡分数与调整建议
// 空任务集视为均衡满分，不产生建议。
func (a *BalanceAnalyzer) Analyze(_ context.Context, rows []repository.TaskRow) BalanceResult {
	result := BalanceResult{
		Score:    100,
		Balanced: true,
		Actual:   map[string]float64{},
		Target:   a.cfg.Targets,
	}
	if len(rows) == 0 {
		return result
	}

	counts := map[string]int{}
	for _, r := range rows {
		counts[r.CognitiveLoad]++
	}

	// 偏差按全部负荷类别计算，缺失的类别按 0 占比参与
	var totalDev float64
	for _, load := range schema.CognitiveLoads {
		actual := float64(counts[load]) / float64(len(rows))
		result.Actual[load] = round2(actual)
		totalDev += math.Abs(actual - a.cfg.Targets[load])
	}
	avgDev := totalDev / float64(len(schema.CognitiveLoads))

	result.Score = round1(math.Max(0, 100-avgDev*200))
	result.Balanced = result.Score >= a.cfg.BalancedThreshold

	// 建议按类别名排序，输出稳定
	loads := append([]string(nil), schema.CognitiveLoads...)
	sort.Strings(loads)
	for _, load := range loads {
		actual := float64(counts[load]) / float64(len(rows))
		diff := actual - a.cfg.Targets[load]
		switch {
		case diff > a.cfg.Tolerance:
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("You have more %s than planned; swap some of it for other work.", loadLabel(load)))
		case diff < -a.cfg.Tolerance:
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("You are light on %s today; consider adding some.", loadLabel(load)))
		}
	}
	return result
}

// loadLabel 负荷类别的展示名
func loadLabel(load string) string {
	switch load {
	case schema.LoadDeepWork:
		return "deep work"
	case schema.LoadActiveWork:
		return "active work"
	case schema.LoadAdmin:
		return "admin work"
	case schema.LoadLearning:
		return "learning"
	}
	return load
}
