package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
)

// RolloverEngine 日界顺延引擎
// 对 fromDate 上仍未完成（pending/in_progress）的实例：
//   - 顺延次数 +1，惩罚分 = 2 * 次数（累计 2,4,6,...）
//   - 在 toDate 上创建携带新次数的实例
//   - 原实例标记为 abandoned
//
// 幂等：(task, toDate) 已存在实例时跳过，重复调用不会二次扣分。
// 整个日界在一个事务里处理，同时用互斥锁保证进程内单写者。
type RolloverEngine struct {
	db     *gorm.DB
	points PointsPolicy

	mu sync.Mutex
}

// NewRolloverEngine 创建顺延引擎
func NewRolloverEngine(db *gorm.DB, points PointsPolicy) *RolloverEngine {
	return &RolloverEngine{db: db, points: points}
}

// RolledTask 单个被顺延任务的结果
type RolledTask struct {
	TaskID          int64  `json:"task_id"`
	RolledOverCount int    `json:"rolled_over_count"`
	PenaltyPoints   int    `json:"penalty_points"`
	ToDate          string `json:"to_date"`
}

// RolloverResult 一次日界处理的汇总
type RolloverResult struct {
	FromDate     string       `json:"from_date"`
	ToDate       string       `json:"to_date"`
	RolledCount  int          `json:"rolled_count"`
	TotalPenalty int          `json:"total_penalty"`
	Tasks        []RolledTask `json:"tasks"`
}

// Process 处理一个日界
func (e *RolloverEngine) Process(ctx context.Context, fromDate, toDate string) (*RolloverResult, error) {
	if fromDate == "" || toDate == "" {
		return nil, fmt.Errorf("日期不能为空")
	}
	if fromDate >= toDate {
		return nil, fmt.Errorf("顺延目标日期必须晚于原日期: %s -> %s", fromDate, toDate)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := &RolloverResult{FromDate: fromDate, ToDate: toDate, Tasks: []RolledTask{}}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewScheduleRepository(tx)

		incomplete, err := repo.GetIncompleteOnDate(ctx, fromDate)
		if err != nil {
			return err
		}

		for _, st := range incomplete {
			exists, err := repo.ExistsForTaskDate(ctx, st.TaskID, toDate)
			if err != nil {
				return err
			}

			if !exists {
				newCount := st.RolledOverCount + 1
				penalty := e.points.Penalty(newCount)

				rolled := schema.ScheduledTask{
					TaskID:          st.TaskID,
					ScheduledDate:   toDate,
					Status:          schema.StatusPending,
					RolledOverCount: newCount,
					PenaltyPoints:   penalty,
				}
				if err := repo.Create(ctx, &rolled); err != nil {
					return err
				}

				result.Tasks = append(result.Tasks, RolledTask{
					TaskID:          st.TaskID,
					RolledOverCount: newCount,
					PenaltyPoints:   penalty,
					ToDate:          toDate,
				})
				result.RolledCount++
				result.TotalPenalty += penalty
			}

			// 无论目标日是否已有实例，原实例都要关闭，否则会被反复顺延
			if err := repo.UpdateStatus(ctx, st.ID, schema.StatusAbandoned, nil, nil); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("处理日界顺延失败: %w", err)
	}

	slog.Info("日界顺延完成",
		"from", fromDate, "to", toDate,
		"rolled", result.RolledCount, "penalty", result.TotalPenalty)

	return result, nil
}
