package schema

import "time"

// UserStats 用户累计统计（单行，ID=1）
// 任务完成、成就解锁时更新。
type UserStats struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	TotalPoints    int       `gorm:"default:0" json:"total_points"`
	TasksCompleted int       `gorm:"default:0" json:"tasks_completed"`
	CurrentStreak  int       `gorm:"default:0" json:"current_streak"`
	LongestStreak  int       `gorm:"default:0" json:"longest_streak"`
	Level          int       `gorm:"default:1" json:"level"`
	Experience     int       `gorm:"default:0" json:"experience"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (UserStats) TableName() string {
	return "user_stats"
}
