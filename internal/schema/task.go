package schema

import "time"

// 认知负荷类别（用于积分权重与负载均衡分析）
const (
	LoadDeepWork   = "deep_work"
	LoadActiveWork = "active_work"
	LoadAdmin      = "admin"
	LoadLearning   = "learning"
)

// CognitiveLoads 所有合法的认知负荷类别
var CognitiveLoads = []string{LoadDeepWork, LoadActiveWork, LoadAdmin, LoadLearning}

// Task 任务主档
// 删除时仅归档（Archived=1），保留分析历史。
// 层级约定为两层：子任务不可再有子任务，由服务层在创建时校验。
type Task struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Complexity   int       `gorm:"default:1" json:"complexity"`               // 1-5
	CognitiveLoad string   `gorm:"size:20;index" json:"cognitive_load"`       // deep_work, active_work, admin, learning
	TimeEstimate int       `gorm:"default:30" json:"time_estimate"`           // 预估耗时（分钟）
	ParentID     *int64    `gorm:"index" json:"parent_id"`                    // 父任务，两层层级
	Archived     bool      `gorm:"default:false;index" json:"archived"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Task) TableName() string {
	return "tasks"
}

// IsValidLoad 校验认知负荷类别
func IsValidLoad(load string) bool {
	for _, l := range CognitiveLoads {
		if l == load {
			return true
		}
	}
	return false
}
