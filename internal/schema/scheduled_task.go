package schema

import "time"

// 日程任务状态
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// ScheduledTask 任务在某个日期上的排期实例
// 唯一约束 (task_id, scheduled_date)：同一任务同一天只有一个实例，
// 顺延引擎依赖该约束实现幂等。
// 分析组件只读；状态变更与顺延是仅有的两个写入口。
type ScheduledTask struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID          int64      `gorm:"not null;uniqueIndex:uniq_task_date" json:"task_id"`
	ScheduledDate   string     `gorm:"size:10;not null;index;uniqueIndex:uniq_task_date" json:"scheduled_date"` // YYYY-MM-DD
	Status          string     `gorm:"size:20;default:pending;index" json:"status"`
	RolledOverCount int        `gorm:"default:0" json:"rolled_over_count"` // 被顺延的次数
	PenaltyPoints   int        `gorm:"default:0" json:"penalty_points"`    // 累计惩罚分 = 2 * RolledOverCount
	ActualTime      *int       `json:"actual_time"`                        // 实际耗时（分钟），完成时写入
	CompletedAt     *time.Time `json:"completed_at"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (ScheduledTask) TableName() string {
	return "scheduled_tasks"
}
