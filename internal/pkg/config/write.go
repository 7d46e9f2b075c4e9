package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath 默认配置文件路径（可执行文件旁的 config/config.yaml）
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// WriteFile 将配置写出为 YAML，用于初始化默认配置文件
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
		},
		"storage": map[string]any{
			"db_path": cfg.Storage.DBPath,
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
		"scoring": map[string]any{
			"load_multipliers":     cfg.Scoring.LoadMultipliers,
			"subtask_bonus":        cfg.Scoring.SubtaskBonus,
			"penalty_per_rollover": cfg.Scoring.PenaltyPerRollover,
			"window_days":          cfg.Scoring.WindowDays,
			"completion_weight":    cfg.Scoring.CompletionWeight,
			"points_weight":        cfg.Scoring.PointsWeight,
			"consistency_weight":   cfg.Scoring.ConsistencyWeight,
			"penalty_weight":       cfg.Scoring.PenaltyWeight,
			"penalty_budget":       cfg.Scoring.PenaltyBudget,
		},
		"trend": map[string]any{
			"window_days":     cfg.Trend.WindowDays,
			"improving_slope": cfg.Trend.ImprovingSlope,
			"declining_slope": cfg.Trend.DecliningSlope,
		},
		"pattern": map[string]any{
			"weekly_variance_pp": cfg.Pattern.WeeklyVariancePP,
			"streak_min_days":    cfg.Pattern.StreakMinDays,
		},
		"burnout": map[string]any{
			"window_days":           cfg.Burnout.WindowDays,
			"min_active_days":       cfg.Burnout.MinActiveDays,
			"decline_high_pp":       cfg.Burnout.DeclineHighPP,
			"decline_medium_pp":     cfg.Burnout.DeclineMediumPP,
			"rollover_high_rate":    cfg.Burnout.RolloverHighRate,
			"rollover_medium_rate":  cfg.Burnout.RolloverMedRate,
			"deep_work_high_rate":   cfg.Burnout.DeepWorkHighRate,
			"deep_work_medium_rate": cfg.Burnout.DeepWorkMedRate,
			"weekend_high_rate":     cfg.Burnout.WeekendHighRate,
			"weekend_medium_rate":   cfg.Burnout.WeekendMedRate,
			"estimate_deviation":    cfg.Burnout.EstimateDeviation,
			"stagnation_days":       cfg.Burnout.StagnationDays,
		},
		"balance": map[string]any{
			"targets":            cfg.Balance.Targets,
			"tolerance":          cfg.Balance.Tolerance,
			"balanced_threshold": cfg.Balance.BalancedThreshold,
		},
		"insights": map[string]any{
			"window_days":         cfg.Insights.WindowDays,
			"low_completion_pct":  cfg.Insights.LowCompletionPct,
			"high_completion_pct": cfg.Insights.HighCompletionPct,
			"load_struggle_pct":   cfg.Insights.LoadStrugglePct,
			"load_min_samples":    cfg.Insights.LoadMinSamples,
			"underestimate_ratio": cfg.Insights.UnderestimateRatio,
			"overestimate_ratio":  cfg.Insights.OverestimateRatio,
			"rollover_avg":        cfg.Insights.RolloverAvg,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
