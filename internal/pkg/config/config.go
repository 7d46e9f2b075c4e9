package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
// 分析器的全部阈值都暴露在这里，而不是散落在代码里硬编码。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Trend     TrendConfig     `mapstructure:"trend"`
	Pattern   PatternConfig   `mapstructure:"pattern"`
	Burnout   BurnoutConfig   `mapstructure:"burnout"`
	Balance   BalanceConfig   `mapstructure:"balance"`
	Insights  InsightsConfig  `mapstructure:"insights"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ServerConfig 本地 HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// ScoringConfig 积分与综合评分配置
type ScoringConfig struct {
	LoadMultipliers    map[string]float64 `mapstructure:"load_multipliers"` // 认知负荷 → 积分倍率
	SubtaskBonus       int                `mapstructure:"subtask_bonus"`
	PenaltyPerRollover int                `mapstructure:"penalty_per_rollover"`
	WindowDays         int                `mapstructure:"window_days"`
	CompletionWeight   float64            `mapstructure:"completion_weight"`
	PointsWeight       float64            `mapstructure:"points_weight"`
	ConsistencyWeight  float64            `mapstructure:"consistency_weight"`
	PenaltyWeight      float64            `mapstructure:"penalty_weight"`
	PenaltyBudget      int                `mapstructure:"penalty_budget"` // 窗口内视为“满额”的惩罚分
}

// TrendConfig 趋势分析配置
type TrendConfig struct {
	WindowDays     int     `mapstructure:"window_days"`
	ImprovingSlope float64 `mapstructure:"improving_slope"` // 净积分日斜率，超过视为上升
	DecliningSlope float64 `mapstructure:"declining_slope"` // 低于视为下降
}

// PatternConfig 模式检测配置
type PatternConfig struct {
	WeeklyVariancePP float64 `mapstructure:"weekly_variance_pp"` // 最好/最差工作日差值（百分点）
	StreakMinDays    int     `mapstructure:"streak_min_days"`
}

// BurnoutConfig 倦怠风险分析配置
type BurnoutConfig struct {
	WindowDays        int     `mapstructure:"window_days"`
	MinActiveDays     int     `mapstructure:"min_active_days"`
	DeclineHighPP     float64 `mapstructure:"decline_high_pp"`   // 完成率下滑（百分点）
	DeclineMediumPP   float64 `mapstructure:"decline_medium_pp"`
	RolloverHighRate  float64 `mapstructure:"rollover_high_rate"`
	RolloverMedRate   float64 `mapstructure:"rollover_medium_rate"`
	DeepWorkHighRate  float64 `mapstructure:"deep_work_high_rate"` // 已完成任务中 deep_work 占比
	DeepWorkMedRate   float64 `mapstructure:"deep_work_medium_rate"`
	WeekendHighRate   float64 `mapstructure:"weekend_high_rate"`
	WeekendMedRate    float64 `mapstructure:"weekend_medium_rate"`
	EstimateDeviation float64 `mapstructure:"estimate_deviation"` // 平均 |actual/estimate - 1| 阈值
	StagnationDays    int     `mapstructure:"stagnation_days"`
}

// BalanceConfig 认知负荷均衡配置
type BalanceConfig struct {
	Targets           map[string]float64 `mapstructure:"targets"` // 目标分布，和为 1
	Tolerance         float64            `mapstructure:"tolerance"`
	BalancedThreshold float64            `mapstructure:"balanced_threshold"`
}

// InsightsConfig 洞察规则配置
type InsightsConfig struct {
	WindowDays        int     `mapstructure:"window_days"`
	LowCompletionPct  float64 `mapstructure:"low_completion_pct"`
	HighCompletionPct float64 `mapstructure:"high_completion_pct"`
	LoadStrugglePct   float64 `mapstructure:"load_struggle_pct"`
	LoadMinSamples    int     `mapstructure:"load_min_samples"`
	UnderestimateRatio float64 `mapstructure:"underestimate_ratio"`
	OverestimateRatio  float64 `mapstructure:"overestimate_ratio"`
	RolloverAvg        float64 `mapstructure:"rollover_avg"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "pulse")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Storage / Server
	v.SetDefault("storage.db_path", "./data/pulse.db")
	v.SetDefault("server.listen_addr", "127.0.0.1:8642")

	// 积分与综合评分
	v.SetDefault("scoring.load_multipliers", map[string]float64{
		"deep_work":   2.0,
		"learning":    1.5,
		"active_work": 1.2,
		"admin":       1.0,
	})
	v.SetDefault("scoring.subtask_bonus", 5)
	v.SetDefault("scoring.penalty_per_rollover", 2)
	v.SetDefault("scoring.window_days", 7)
	v.SetDefault("scoring.completion_weight", 0.4)
	v.SetDefault("scoring.points_weight", 0.3)
	v.SetDefault("scoring.consistency_weight", 0.2)
	v.SetDefault("scoring.penalty_weight", 0.1)
	v.SetDefault("scoring.penalty_budget", 100)

	// 趋势
	v.SetDefault("trend.window_days", 30)
	v.SetDefault("trend.improving_slope", 0.5)
	v.SetDefault("trend.declining_slope", -0.5)

	// 模式
	v.SetDefault("pattern.weekly_variance_pp", 20.0)
	v.SetDefault("pattern.streak_min_days", 3)

	// 倦怠
	v.SetDefault("burnout.window_days", 14)
	v.SetDefault("burnout.min_active_days", 3)
	v.SetDefault("burnout.decline_high_pp", 20.0)
	v.SetDefault("burnout.decline_medium_pp", 10.0)
	v.SetDefault("burnout.rollover_high_rate", 0.4)
	v.SetDefault("burnout.rollover_medium_rate", 0.25)
	v.SetDefault("burnout.deep_work_high_rate", 0.6)
	v.SetDefault("burnout.deep_work_medium_rate", 0.4)
	v.SetDefault("burnout.weekend_high_rate", 0.6)
	v.SetDefault("burnout.weekend_medium_rate", 0.3)
	v.SetDefault("burnout.estimate_deviation", 0.5)
	v.SetDefault("burnout.stagnation_days", 3)

	// 负荷均衡
	v.SetDefault("balance.targets", map[string]float64{
		"deep_work":   0.25,
		"active_work": 0.40,
		"admin":       0.20,
		"learning":    0.15,
	})
	v.SetDefault("balance.tolerance", 0.15)
	v.SetDefault("balance.balanced_threshold", 70.0)

	// 洞察
	v.SetDefault("insights.window_days", 14)
	v.SetDefault("insights.low_completion_pct", 50.0)
	v.SetDefault("insights.high_completion_pct", 90.0)
	v.SetDefault("insights.load_struggle_pct", 40.0)
	v.SetDefault("insights.load_min_samples", 3)
	v.SetDefault("insights.underestimate_ratio", 1.5)
	v.SetDefault("insights.overestimate_ratio", 0.7)
	v.SetDefault("insights.rollover_avg", 1.0)
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
