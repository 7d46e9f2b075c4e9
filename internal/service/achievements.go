package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
)

// 成就稀有度
const (
	TierCommon    = "common"
	TierUncommon  = "uncommon"
	TierRare      = "rare"
	TierLegendary = "legendary"
)

// AchievementSnapshot 判定成就时的统计快照
// 全部谓词都只看快照，判定顺序不影响结果。
type AchievementSnapshot struct {
	TasksCompleted    int
	TotalPoints       int
	CurrentStreak     int
	DayNetPoints      int  // 判定日的净积分
	DeepWorkCompleted int  // 累计完成的 deep_work 实例数
	PerfectDay        bool // 判定日任务全部完成
	EarlyBird         bool // 判定日 7 点前完成过任务
	NightOwl          bool // 判定日 22 点后完成过任务
	Comeback          bool // 完成过顺延 3 次以上的任务
}

// AchievementDef 成就定义，静态注册表的一项
type AchievementDef struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tier        string `json:"tier"`
	Reward      int    `json:"reward"`

	Predicate func(AchievementSnapshot) bool `json:"-"`
}

// achievementRegistry 成就目录
// 解锁状态在库里，定义永远在代码里，两边用 Key 对上。
var achievementRegistry = []AchievementDef{
	{
		Key: "first_task", Name: "First Steps", Tier: TierCommon, Reward: 10,
		Description: "Complete your first task.",
		Predicate:   func(s AchievementSnapshot) bool { return s.TasksCompleted >= 1 },
	},
	{
		Key: "streak_3", Name: "Warming Up", Tier: TierCommon, Reward: 50,
		Description: "Complete tasks 3 days in a row.",
		Predicate:   func(s AchievementSnapshot) bool { return s.CurrentStreak >= 3 },
	},
	{
		Key: "streak_7", Name: "On Fire", Tier: TierUncommon, Reward: 150,
		Description: "Complete tasks 7 days in a row.",
		Predicate:   func(s AchievementSnapshot) bool { return s.CurrentStreak >= 7 },
	},
	{
		Key: "streak_30", Name: "Unstoppable", Tier: TierLegendary, Reward: 1000,
		Description: "Complete tasks 30 days in a row.",
		Predicate:   func(s AchievementSnapshot) bool { return s.CurrentStreak >= 30 },
	},
	{
		Key: "points_100_day", Name: "Century", Tier: TierUncommon, Reward: 100,
		Description: "Earn 100 net points in a single day.",
		Predicate:   func(s AchievementSnapshot) bool { return s.DayNetPoints >= 100 },
	},
	{
		Key: "points_500", Name: "High Roller", Tier: TierRare, Reward: 250,
		Description: "Accumulate 500 lifetime points.",
		Predicate:   func(s AchievementSnapshot) bool { return s.TotalPoints >= 500 },
	},
	{
		Key: "deep_work_10", Name: "Deep Diver", Tier: TierRare, Reward: 200,
		Description: "Complete 10 deep work tasks.",
		Predicate:   func(s AchievementSnapshot) bool { return s.DeepWorkCompleted >= 10 },
	},
	{
		Key: "perfect_day", Name: "Perfectionist", Tier: TierUncommon, Reward: 150,
		Description: "Complete every task scheduled for a day.",
		Predicate:   func(s AchievementSnapshot) bool { return s.PerfectDay },
	},
	{
		Key: "early_bird", Name: "Early Bird", Tier: TierUncommon, Reward: 75,
		Description: "Complete a task before 7am.",
		Predicate:   func(s AchievementSnapshot) bool { return s.EarlyBird },
	},
	{
		Key: "night_owl", Name: "Night Owl", Tier: TierUncommon, Reward: 75,
		Description: "Complete a task after 10pm.",
		Predicate:   func(s AchievementSnapshot) bool { return s.NightOwl },
	},
	{
		Key: "comeback", Name: "Comeback Kid", Tier: TierRare, Reward: 100,
		Description: "Finish a task that rolled over 3 or more times.",
		Predicate:   func(s AchievementSnapshot) bool { return s.Comeback },
	},
}

// UnlockedAchievement 成就与解锁状态的组合视图
type UnlockedAchievement struct {
	AchievementDef
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// AchievementEngine 成就判定引擎
// 解锁与积分入账在同一事务里，重复判定不会二次发奖。
type AchievementEngine struct {
	db     *gorm.DB
	points PointsPolicy
}

// NewAchievementEngine 创建成就引擎
func NewAchievementEngine(db *gorm.DB, points PointsPolicy) *AchievementEngine {
	return &AchievementEngine{db: db, points: points}
}

// List 全部成就及解锁状态
func (e *AchievementEngine) List(ctx context.Context) ([]UnlockedAchievement, error) {
	unlocked, err := repository.NewAchievementRepository(e.db).UnlockedKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取解锁状态失败: %w", err)
	}

	out := make([]UnlockedAchievement, 0, len(achievementRegistry))
	for _, def := range achievementRegistry {
		item := UnlockedAchievement{AchievementDef: def}
		if at, ok := unlocked[def.Key]; ok {
			item.Unlocked = true
			t := at
			item.UnlockedAt = &t
		}
		out = append(out, item)
	}
	return out, nil
}

// Check 对指定日期做一轮判定，返回本轮新解锁的成就
// 没有变化时返回空切片。
func (e *AchievementEngine) Check(ctx context.Context, date string) ([]AchievementDef, error) {
	snapshot, err := e.buildSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	var newly []AchievementDef
	now := time.Now()

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		achRepo := repository.NewAchievementRepository(tx)
		statsRepo := repository.NewStatsRepository(tx)

		unlocked, err := achRepo.UnlockedKeys(ctx)
		if err != nil {
			return err
		}

		var rewardTotal int
		for _, def := range achievementRegistry {
			if _, done := unlocked[def.Key]; done {
				continue
			}
			if !def.Predicate(snapshot) {
				continue
			}
			if err := achRepo.Unlock(ctx, def.Key, now); err != nil {
				return err
			}
			rewardTotal += def.Reward
			newly = append(newly, def)
		}

		if rewardTotal > 0 {
			stats, err := statsRepo.Get(ctx)
			if err != nil {
				return err
			}
			stats.TotalPoints += rewardTotal
			info := LevelForPoints(stats.TotalPoints)
			stats.Level = info.Level
			stats.Experience = stats.TotalPoints
			return statsRepo.Save(ctx, stats)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("成就判定失败: %w", err)
	}

	if len(newly) > 0 {
		keys := make([]string, len(newly))
		for i, def := range newly {
			keys[i] = def.Key
		}
		slog.Info("解锁新成就", "date", date, "keys", keys)
	}
	return newly, nil
}

// buildSnapshot 收集判定所需的统计快照
func (e *AchievementEngine) buildSnapshot(ctx context.Context, date string) (AchievementSnapshot, error) {
	var snap AchievementSnapshot

	scheduleRepo := repository.NewScheduleRepository(e.db)
	achRepo := repository.NewAchievementRepository(e.db)

	completed, err := scheduleRepo.GetCompleted(ctx)
	if err != nil {
		return snap, err
	}
	snap.TasksCompleted = len(completed)
	earned := 0
	for _, row := range completed {
		earned += e.points.TaskPoints(row.Complexity, row.CognitiveLoad, row.TimeEstimate, row.SubtaskCount > 0)
		if row.CognitiveLoad == schema.LoadDeepWork {
			snap.DeepWorkCompleted++
		}
		if row.RolledOverCount >= 3 {
			snap.Comeback = true
		}
	}

	// 终身积分与统计服务同一口径：任务积分 + 成就奖励 - 惩罚
	penalties, err := scheduleRepo.TotalPenalties(ctx)
	if err != nil {
		return snap, err
	}
	unlocked, err := achRepo.UnlockedKeys(ctx)
	if err != nil {
		return snap, err
	}
	rewards := 0
	for _, def := range achievementRegistry {
		if _, ok := unlocked[def.Key]; ok {
			rewards += def.Reward
		}
	}
	snap.TotalPoints = earned + rewards - penalties
	if snap.TotalPoints < 0 {
		snap.TotalPoints = 0
	}

	anchor, err := time.Parse(repository.DateLayout, date)
	if err != nil {
		return snap, fmt.Errorf("无效日期 %q: %w", date, err)
	}
	dates, err := scheduleRepo.DistinctCompletionDates(ctx)
	if err != nil {
		return snap, err
	}
	snap.CurrentStreak = computeStreaks(dates, anchor).Current

	dayRows, err := scheduleRepo.GetByDate(ctx, date)
	if err != nil {
		return snap, err
	}
	daySummary := Aggregate(date, dayRows, e.points)
	snap.DayNetPoints = daySummary.NetPoints
	snap.PerfectDay = daySummary.TotalTasks > 0 && daySummary.CompletedTasks == daySummary.TotalTasks

	for _, row := range dayRows {
		if row.Status != schema.StatusCompleted || row.CompletedAt == nil {
			continue
		}
		hour := row.CompletedAt.Hour()
		if hour < 7 {
			snap.EarlyBird = true
		}
		if hour >= 22 {
			snap.NightOwl = true
		}
	}

	return snap, nil
}
