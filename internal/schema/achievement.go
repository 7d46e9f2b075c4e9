package schema

import "time"

// AchievementUnlock 成就解锁记录
// 成就的定义（条件、奖励、档位）是服务层的静态注册表，这里只持久化解锁状态。
// 解锁单调：一旦写入不会回退。
type AchievementUnlock struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Key        string    `gorm:"size:50;uniqueIndex;not null" json:"key"`
	UnlockedAt time.Time `gorm:"not null" json:"unlocked_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (AchievementUnlock) TableName() string {
	return "achievement_unlocks"
}
