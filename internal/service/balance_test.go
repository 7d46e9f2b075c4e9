package service

import (
	"context"
	"strings"
	"testing"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

func testBalanceConfig() config.BalanceConfig {
	return config.BalanceConfig{
		Targets: map[string]float64{
			schema.LoadDeepWork:   0.25,
			schema.LoadActiveWork: 0.40,
			schema.LoadAdmin:      0.20,
			schema.LoadLearning:   0.15,
		},
		Tolerance:         0.15,
		BalancedThreshold: 70,
	}
}

func loadRows(loads ...string) []repository.TaskRow {
	rows := make([]repository.TaskRow, len(loads))
	for i, load := range loads {
		rows[i] = repository.TaskRow{CognitiveLoad: load, Status: schema.StatusPending}
	}
	return rows
}

func TestBalanceEmptyDay(t *testing.T) {
	a := NewBalanceAnalyzer(testBalanceConfig())

	result := a.Analyze(context.Background(), nil)
	if !result.Balanced || result.Score != 100 {
		t.Fatalf("empty day = %+v", result)
	}
	if len(result.Recommendations) != 0 {
		t.Fatalf("empty day recommendations: %v", result.Recommendations)
	}
}

func TestBalancePerfectMatch(t *testing.T) {
	a := NewBalanceAnalyzer(testBalanceConfig())

	// 20 个任务按目标分布 5/8/4/3
	var loads []string
	for i := 0; i < 5; i++ {
		loads = append(loads, schema.LoadDeepWork)
	}
	for i := 0; i < 8; i++ {
		loads = append(loads, schema.LoadActiveWork)
	}
	for i := 0; i < 4; i++ {
		loads = append(loads, schema.LoadAdmin)
	}
	for i := 0; i < 3; i++ {
		loads = append(loads, schema.LoadLearning)
	}

	result := a.Analyze(context.Background(), loadRows(loads...))
	if result.Score != 100 || !result.Balanced {
		t.Fatalf("perfect match = %+v", result)
	}
	if len(result.Recommendations) != 0 {
		t.Fatalf("recommendations on perfect match: %v", result.Recommendations)
	}
}

func TestBalanceSkewedDay(t *testing.T) {
	a := NewBalanceAnalyzer(testBalanceConfig())

	// 全部 deep_work：偏差 (0.75+0.40+0.20+0.15)/4 = 0.375，score = 100-75 = 25
	result := a.Analyze(context.Background(), loadRows(
		schema.LoadDeepWork, schema.LoadDeepWork, schema.LoadDeepWork, schema.LoadDeepWork,
	))
	if result.Score != 25 {
		t.Fatalf("score = %v, want 25", result.Score)
	}
	if result.Balanced {
		t.Fatalf("skewed day marked balanced")
	}

	// deep_work 超配 + active_work 等缺口都超 15pp
	var over, under bool
	for _, rec := range result.Recommendations {
		if strings.Contains(rec, "more deep work") {
			over = true
		}
		if strings.Contains(rec, "light on active work") {
			under = true
		}
	}
	if !over || !under {
		t.Fatalf("recommendations = %v", result.Recommendations)
	}
}

func TestBalanceActualProportions(t *testing.T) {
	a := NewBalanceAnalyzer(testBalanceConfig())

	result := a.Analyze(context.Background(), loadRows(
		schema.LoadDeepWork, schema.LoadAdmin, schema.LoadAdmin, schema.LoadActiveWork,
	))
	if result.Actual[schema.LoadAdmin] != 0.5 || result.Actual[schema.LoadDeepWork] != 0.25 {
		t.Fatalf("actual = %v", result.Actual)
	}
	if result.Actual[schema.LoadLearning] != 0 {
		t.Fatalf("missing load should be 0: %v", result.Actual)
	}
}
