package schema

import "time"

// SchemaMeta 数据库 schema 版本记录，单行（ID=1）。
// 迁移由版本号门控，不裸跑 AutoMigrate。
type SchemaMeta struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	SchemaVersion int       `gorm:"not null" json:"schema_version"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (SchemaMeta) TableName() string {
	return "schema_meta"
}
