package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gautriv/productivity/internal/httpapi"
	"github.com/gautriv/productivity/internal/pkg/config"
	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/service"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	db      *repository.Database
	engine  *service.Engine
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - 个人生产力分析与游戏化引擎",
		Long:  `Pulse 把每天的任务完成记录变成积分、等级、成就和可读的洞察，在本地运行，数据不出机器。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				slog.Error("加载配置失败", "error", err)
				os.Exit(1)
			}
			config.SetupLogger(cfg.App.LogLevel)

			db, err = repository.NewDatabase(cfg.Storage.DBPath)
			if err != nil {
				slog.Error("初始化数据库失败", "error", err)
				os.Exit(1)
			}
			if db.SafeMode {
				slog.Warn("数据库迁移失败，以安全模式运行（只读）", "error", db.MigrationError)
			}
			engine = service.NewEngine(db.DB, cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(rolloverCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(burnoutCmd())
	rootCmd.AddCommand(achievementsCmd())
	rootCmd.AddCommand(challengeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initCmd 写出默认配置文件
func initCmd() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "生成默认配置文件",
		Run: func(cmd *cobra.Command, args []string) {
			target := path
			if target == "" {
				var err error
				target, err = config.DefaultConfigPath()
				if err != nil {
					fmt.Printf("❌ 确定配置路径失败: %v\n", err)
					os.Exit(1)
				}
			}

			if _, err := os.Stat(target); err == nil && !force {
				fmt.Printf("⚠️  配置文件已存在: %s（--force 覆盖）\n", target)
				os.Exit(1)
			}

			if err := config.WriteFile(target, cfg); err != nil {
				fmt.Printf("❌ 写入配置失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已生成配置文件: %s\n", target)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "输出路径，默认可执行文件旁的 config/config.yaml")
	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有文件")
	return cmd
}

// serveCmd 启动本地 HTTP 服务
func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动本地 HTTP 服务",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listenAddr := addr
			if listenAddr == "" {
				listenAddr = cfg.Server.ListenAddr
			}

			srv, err := httpapi.Start(ctx, engine, httpapi.Options{
				ListenAddr: listenAddr,
				SafeMode:   db.SafeMode,
			})
			if err != nil {
				slog.Error("启动服务失败", "error", err)
				os.Exit(1)
			}
			fmt.Printf("🚀 Pulse 已启动: %s\n", srv.BaseURL())

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，默认取配置")
	return cmd
}

// rolloverCmd 日界顺延
func rolloverCmd() *cobra.Command {
	var fromDate, toDate string

	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "把某日未完成的任务顺延到下一天",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if fromDate == "" {
				fromDate = time.Now().AddDate(0, 0, -1).Format(repository.DateLayout)
			}
			if toDate == "" {
				next, err := repository.NextDay(fromDate)
				if err != nil {
					fmt.Printf("❌ 日期无效: %v\n", err)
					os.Exit(1)
				}
				toDate = next
			}

			result, err := engine.Rollover.Process(ctx, fromDate, toDate)
			if err != nil {
				fmt.Printf("❌ 顺延失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("📅 %s -> %s\n", result.FromDate, result.ToDate)
			fmt.Printf("   顺延 %d 个任务，累计惩罚 %d 分\n", result.RolledCount, result.TotalPenalty)
			for _, t := range result.Tasks {
				fmt.Printf("   - 任务 %d：第 %d 次顺延，惩罚 %d 分\n", t.TaskID, t.RolledOverCount, t.PenaltyPoints)
			}
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "原日期 (YYYY-MM-DD)，默认昨天")
	cmd.Flags().StringVar(&toDate, "to", "", "目标日期 (YYYY-MM-DD)，默认原日期的后一天")
	return cmd
}

// summaryCmd 每日汇总
func summaryCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "查看某日的汇总",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			if date == "" {
				date = time.Now().Format(repository.DateLayout)
			}

			s, err := engine.Summary.GetDaily(ctx, date)
			if err != nil {
				fmt.Printf("❌ 获取汇总失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("📊 %s\n", s.Date)
			fmt.Printf("   任务: %d/%d 完成 (%.1f%%)，%d 待办\n",
				s.CompletedTasks, s.TotalTasks, s.CompletionRate, s.PendingTasks)
			fmt.Printf("   积分: +%d / -%d = %d\n", s.PointsEarned, s.PenaltyPoints, s.NetPoints)
			fmt.Printf("   耗时: 预估 %d 分钟 / 实际 %d 分钟\n", s.EstimatedTime, s.ActualTime)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "日期 (YYYY-MM-DD)，默认今天")
	return cmd
}

// statsCmd 用户统计
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "查看累计统计与等级",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			today := time.Now().Format(repository.DateLayout)

			view, err := engine.Stats.Assemble(ctx, today)
			if err != nil {
				fmt.Printf("❌ 获取统计失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("🏆 Lv.%d（%.0f%% 到下一级）\n", view.Level, view.XPPercentage)
			fmt.Printf("   总积分: %d\n", view.TotalPoints)
			fmt.Printf("   完成任务: %d\n", view.TasksCompleted)
			fmt.Printf("   连续天数: %d（最长 %d）\n", view.CurrentStreak, view.LongestStreak)
			fmt.Printf("   成就: %d/%d\n", view.AchievementsUnlocked, view.AchievementsTotal)
		},
	}
}

// scoreCmd 综合评分
func scoreCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "score",
		Short: "查看窗口综合生产力评分",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			today := time.Now().Format(repository.DateLayout)

			result, err := engine.ScoreWindow(ctx, today, days)
			if err != nil {
				fmt.Printf("❌ 计算评分失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("⭐ %d/100 · %s\n", result.Score, result.Rating)
			fmt.Printf("   完成率 %.1f%% | 积分达成 %.1f%% | 一致性 %.1f%% | 避罚 %.1f%%\n",
				result.CompletionPct, result.PointsPct, result.ConsistencyPct, result.PenaltyAvoidPct)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "窗口天数，默认取配置")
	return cmd
}

// burnoutCmd 倦怠风险
func burnoutCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "burnout",
		Short: "查看倦怠风险评估",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			today := time.Now().Format(repository.DateLayout)

			result, err := engine.AnalyzeBurnout(ctx, today, days)
			if err != nil {
				fmt.Printf("❌ 分析失败: %v\n", err)
				os.Exit(1)
			}

			if result.RiskLevel == service.RiskInsufficientData {
				fmt.Println("ℹ️  活跃天数不足，暂时无法评估倦怠风险")
				return
			}

			fmt.Printf("🔥 风险 %d/%d (%s)\n", result.RiskScore, result.MaxScore, result.RiskLevel)
			for _, f := range result.Factors {
				fmt.Printf("   [%s] %s\n", f.Severity, f.Description)
			}
			for _, rec := range result.Recommendations {
				fmt.Printf("   → (%s) %s\n", rec.Priority, rec.Message)
			}
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "窗口天数，默认取配置")
	return cmd
}

// achievementsCmd 成就列表
func achievementsCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "查看成就，--check 触发一轮判定",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			today := time.Now().Format(repository.DateLayout)

			if check {
				newly, err := engine.Achievements.Check(ctx, today)
				if err != nil {
					fmt.Printf("❌ 成就判定失败: %v\n", err)
					os.Exit(1)
				}
				for _, def := range newly {
					fmt.Printf("🎉 解锁新成就: %s (+%d 分)\n", def.Name, def.Reward)
				}
				if len(newly) == 0 {
					fmt.Println("没有新成就解锁")
				}
			}

			list, err := engine.Achievements.List(ctx)
			if err != nil {
				fmt.Printf("❌ 获取成就失败: %v\n", err)
				os.Exit(1)
			}
			for _, item := range list {
				mark := "🔒"
				if item.Unlocked {
					mark = "✅"
				}
				fmt.Printf("%s [%s] %s - %s (+%d)\n", mark, item.Tier, item.Name, item.Description, item.Reward)
			}
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "先做一轮成就判定")
	return cmd
}

// challengeCmd 当日挑战
func challengeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "challenge",
		Short: "查看当日挑战与激励语",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			today := time.Now().Format(repository.DateLayout)

			challenge, err := engine.Motivator.Challenge(ctx, today)
			if err != nil {
				fmt.Printf("❌ 获取挑战失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🎯 %s (+%d 分)\n", challenge.Description, challenge.BonusPoints)

			summary, err := engine.Summary.GetDaily(ctx, today)
			if err == nil {
				quoteCtx := service.QuoteContext(time.Now().Hour(), summary.CompletionRate)
				fmt.Printf("💬 %s\n", service.Quote(quoteCtx, today))
			}
		},
	}
}
