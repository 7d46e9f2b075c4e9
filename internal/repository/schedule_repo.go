package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
)

// ScheduleRepository 排期实例仓储
// 分析引擎的全部读取口都在这里：按日/区间取实例并关联任务属性。
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository 创建仓储
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// TaskRow 排期实例与任务属性的关联行，分析组件的标准输入。
type TaskRow struct {
	ID              int64      `json:"id"`
	TaskID          int64      `json:"task_id"`
	ScheduledDate   string     `json:"scheduled_date"`
	Status          string     `json:"status"`
	RolledOverCount int        `json:"rolled_over_count"`
	PenaltyPoints   int        `json:"penalty_points"`
	ActualTime      *int       `json:"actual_time"`
	CompletedAt     *time.Time `json:"completed_at"`
	Title           string     `json:"title"`
	Complexity      int        `json:"complexity"`
	CognitiveLoad   string     `json:"cognitive_load"`
	TimeEstimate    int        `json:"time_estimate"`
	SubtaskCount    int        `json:"subtask_count"`
}

const taskRowSelect = `st.id, st.task_id, st.scheduled_date, st.status,
	st.rolled_over_count, st.penalty_points, st.actual_time, st.completed_at,
	t.title, t.complexity, t.cognitive_load, t.time_estimate,
	(SELECT COUNT(*) FROM tasks c WHERE c.parent_id = t.id AND c.archived = 0) AS subtask_count`

// GetByDate 按日期取全部实例（含任务属性）
func (r *ScheduleRepository) GetByDate(ctx context.Context, date string) ([]TaskRow, error) {
	var rows []TaskRow
	err := r.db.WithContext(ctx).
		Table("scheduled_tasks st").
		Select(taskRowSelect).
		Joins("JOIN tasks t ON st.task_id = t.id").
		Where("st.scheduled_date = ?", date).
		Order("st.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询日程失败: %w", err)
	}
	return rows, nil
}

// GetByDateRange 按日期区间取实例，日期升序
func (r *ScheduleRepository) GetByDateRange(ctx context.Context, startDate, endDate string) ([]TaskRow, error) {
	var rows []TaskRow
	err := r.db.WithContext(ctx).
		Table("scheduled_tasks st").
		Select(taskRowSelect).
		Joins("JOIN tasks t ON st.task_id = t.id").
		Where("st.scheduled_date >= ? AND st.scheduled_date <= ?", startDate, endDate).
		Order("st.scheduled_date ASC, st.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询日程区间失败: %w", err)
	}
	return rows, nil
}

// GetIncompleteOnDate 取某日仍未完成（pending/in_progress）的实例，顺延引擎输入
func (r *ScheduleRepository) GetIncompleteOnDate(ctx context.Context, date string) ([]schema.ScheduledTask, error) {
	var tasks []schema.ScheduledTask
	err := r.db.WithContext(ctx).
		Where("scheduled_date = ? AND status IN ?", date,
			[]string{schema.StatusPending, schema.StatusInProgress}).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("查询未完成任务失败: %w", err)
	}
	return tasks, nil
}

// GetCompleted 取全部已完成实例（含任务属性），成就判定输入
func (r *ScheduleRepository) GetCompleted(ctx context.Context) ([]TaskRow, error) {
	var rows []TaskRow
	err := r.db.WithContext(ctx).
		Table("scheduled_tasks st").
		Select(taskRowSelect).
		Joins("JOIN tasks t ON st.task_id = t.id").
		Where("st.status = ?", schema.StatusCompleted).
		Order("st.scheduled_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询完成历史失败: %w", err)
	}
	return rows, nil
}

// DailyCount 某日的实例总数与完成数
type DailyCount struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// GetDailyCounts 按日聚合总数/完成数，日期升序
func (r *ScheduleRepository) GetDailyCounts(ctx context.Context) ([]DailyCount, error) {
	var counts []DailyCount
	err := r.db.WithContext(ctx).
		Table("scheduled_tasks").
		Select(`scheduled_date AS date, COUNT(*) AS total,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed`, schema.StatusCompleted).
		Group("scheduled_date").
		Order("scheduled_date ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("按日聚合失败: %w", err)
	}
	return counts, nil
}

// DistinctCompletionDates 有完成记录的日期集合，日期升序，连续天数统计输入
func (r *ScheduleRepository) DistinctCompletionDates(ctx context.Context) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).
		Model(&schema.ScheduledTask{}).
		Distinct("scheduled_date").
		Where("status = ?", schema.StatusCompleted).
		Order("scheduled_date ASC").
		Pluck("scheduled_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("查询完成日期失败: %w", err)
	}
	return dates, nil
}

// GetSimilarBefore 取某日期之前、复杂度与负荷相同的历史实例（完成概率预测输入）
func (r *ScheduleRepository) GetSimilarBefore(ctx context.Context, complexity int, load, beforeDate string, limit int) ([]TaskRow, error) {
	var rows []TaskRow
	err := r.db.WithContext(ctx).
		Table("scheduled_tasks st").
		Select(taskRowSelect).
		Joins("JOIN tasks t ON st.task_id = t.id").
		Where("t.complexity = ? AND t.cognitive_load = ? AND st.scheduled_date < ?",
			complexity, load, beforeDate).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询相似任务失败: %w", err)
	}
	return rows, nil
}

// TotalPenalties 全部实例累计的惩罚分
func (r *ScheduleRepository) TotalPenalties(ctx context.Context) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).
		Model(&schema.ScheduledTask{}).
		Select("SUM(penalty_points)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("统计惩罚分失败: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// Create 创建排期实例
func (r *ScheduleRepository) Create(ctx context.Context, st *schema.ScheduledTask) error {
	if err := r.db.WithContext(ctx).Create(st).Error; err != nil {
		return fmt.Errorf("创建排期失败: %w", err)
	}
	return nil
}

// ExistsForTaskDate 判断 (task, date) 是否已有实例，顺延幂等检查
func (r *ScheduleRepository) ExistsForTaskDate(ctx context.Context, taskID int64, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.ScheduledTask{}).
		Where("task_id = ? AND scheduled_date = ?", taskID, date).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("检查排期是否存在失败: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus 更新实例状态；完成时写入实际耗时与完成时间
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id int64, status string, actualTime *int, completedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if actualTime != nil {
		updates["actual_time"] = *actualTime
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	err := r.db.WithContext(ctx).
		Model(&schema.ScheduledTask{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("更新状态失败: %w", err)
	}
	return nil
}
