package service

import (
	"context"

	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"gorm.io/gorm"
)

// Engine 分析引擎的装配根
// 所有分析组件共享一个数据库句柄和一份配置，组件自身无状态。
type Engine struct {
	DB  *gorm.DB
	Cfg *config.Config

	Points       PointsPolicy
	Tasks        *TaskService
	Summary      *SummaryService
	Trend        *TrendAnalyzer
	Pattern      *PatternDetector
	Burnout      *BurnoutAnalyzer
	Balance      *BalanceAnalyzer
	Scorer       *Scorer
	Rollover     *RolloverEngine
	Achievements *AchievementEngine
	Insights     *InsightsGenerator
	Streaks      *StreakTracker
	Predictor    *Predictor
	Motivator    *Motivator
	Stats        *StatsService
}

// NewEngine 装配全部服务
func NewEngine(db *gorm.DB, cfg *config.Config) *Engine {
	points := NewDefaultPointsPolicy(cfg.Scoring.LoadMultipliers, cfg.Scoring.SubtaskBonus, cfg.Scoring.PenaltyPerRollover)
	scheduleRepo := repository.NewScheduleRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	return &Engine{
		DB:           db,
		Cfg:          cfg,
		Points:       points,
		Tasks:        NewTaskService(db),
		Summary:      NewSummaryService(scheduleRepo, summaryRepo, points),
		Trend:        NewTrendAnalyzer(cfg.Trend),
		Pattern:      NewPatternDetector(cfg.Pattern),
		Burnout:      NewBurnoutAnalyzer(cfg.Burnout),
		Balance:      NewBalanceAnalyzer(cfg.Balance),
		Scorer:       NewScorer(cfg.Scoring, points),
		Rollover:     NewRolloverEngine(db, points),
		Achievements: NewAchievementEngine(db, points),
		Insights:     NewInsightsGenerator(cfg.Insights),
		Streaks:      NewStreakTracker(scheduleRepo),
		Predictor:    NewPredictor(scheduleRepo),
		Motivator:    NewMotivator(scheduleRepo, points),
		Stats:        NewStatsService(db, points),
	}
}

// TrendReport 趋势 + 模式的组合结果
type TrendReport struct {
	TrendResult
	Patterns []Pattern `json:"patterns"`
}

// AnalyzeTrends 以 endDate 为终点的 days 天趋势与模式
func (e *Engine) AnalyzeTrends(ctx context.Context, endDate string, days int) (*TrendReport, error) {
	summaries, err := e.Summary.GetWindow(ctx, endDate, days)
	if err != nil {
		return nil, err
	}
	trend := e.Trend.Analyze(ctx, summaries)
	patterns := e.Pattern.Detect(ctx, trend.WeeklyPerformance, summaries)
	return &TrendReport{TrendResult: trend, Patterns: patterns}, nil
}

// AnalyzeBurnout 倦怠风险分析，窗口取配置默认或显式天数
func (e *Engine) AnalyzeBurnout(ctx context.Context, endDate string, days int) (*BurnoutResult, error) {
	if days <= 0 {
		days = e.Cfg.Burnout.WindowDays
	}
	summaries, err := e.Summary.GetWindow(ctx, endDate, days)
	if err != nil {
		return nil, err
	}
	start, err := repository.WindowStart(endDate, days)
	if err != nil {
		return nil, err
	}
	rows, err := repository.NewScheduleRepository(e.DB).GetByDateRange(ctx, start, endDate)
	if err != nil {
		return nil, err
	}
	result := e.Burnout.Analyze(ctx, summaries, rows)
	return &result, nil
}

// AnalyzeBalance 某日负荷均衡
func (e *Engine) AnalyzeBalance(ctx context.Context, date string) (*BalanceResult, error) {
	rows, err := repository.NewScheduleRepository(e.DB).GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	result := e.Balance.Analyze(ctx, rows)
	return &result, nil
}

// ScoreWindow 综合评分，窗口取配置默认或显式天数
func (e *Engine) ScoreWindow(ctx context.Context, endDate string, days int) (*ScoreResult, error) {
	if days <= 0 {
		days = e.Cfg.Scoring.WindowDays
	}
	summaries, err := e.Summary.GetWindow(ctx, endDate, days)
	if err != nil {
		return nil, err
	}
	result := e.Scorer.Score(ctx, summaries, days)
	return &result, nil
}

// GenerateInsights 汇合趋势、模式与原始数据生成洞察
func (e *Engine) GenerateInsights(ctx context.Context, endDate string, days int) ([]Insight, error) {
	if days <= 0 {
		days = e.Cfg.Insights.WindowDays
	}
	summaries, err := e.Summary.GetWindow(ctx, endDate, days)
	if err != nil {
		return nil, err
	}
	start, err := repository.WindowStart(endDate, days)
	if err != nil {
		return nil, err
	}
	rows, err := repository.NewScheduleRepository(e.DB).GetByDateRange(ctx, start, endDate)
	if err != nil {
		return nil, err
	}
	trend := e.Trend.Analyze(ctx, summaries)
	patterns := e.Pattern.Detect(ctx, trend.WeeklyPerformance, summaries)
	return e.Insights.Generate(ctx, summaries, rows, trend, patterns), nil
}
