package schema

import "time"

// DailySummary 单日汇总缓存
// 派生数据，可按需重算；真实来源是 scheduled_tasks。
type DailySummary struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date               string    `gorm:"size:10;uniqueIndex;not null" json:"date"` // YYYY-MM-DD
	TotalTasks         int       `gorm:"default:0" json:"total_tasks"`
	CompletedTasks     int       `gorm:"default:0" json:"completed_tasks"`
	PendingTasks       int       `gorm:"default:0" json:"pending_tasks"`
	PointsEarned       int       `gorm:"default:0" json:"points_earned"`
	PenaltyPoints      int       `gorm:"default:0" json:"penalty_points"`
	NetPoints          int       `gorm:"default:0" json:"net_points"`
	EstimatedTime      int       `gorm:"default:0" json:"estimated_time"` // 分钟
	ActualTime         int       `gorm:"default:0" json:"actual_time"`    // 分钟
	CompletionRate     float64   `gorm:"default:0" json:"completion_rate"` // 0-100，total=0 时为 0
	DeepWorkCompleted  int       `gorm:"default:0" json:"deep_work_completed"`
	ActiveWorkCompleted int      `gorm:"default:0" json:"active_work_completed"`
	AdminCompleted     int       `gorm:"default:0" json:"admin_completed"`
	LearningCompleted  int       `gorm:"default:0" json:"learning_completed"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DailySummary) TableName() string {
	return "daily_summaries"
}
