package testutil

import (
	"testing"

	"github.com/gautriv/productivity/internal/schema"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB 打开内存 SQLite 并自动迁移所有表
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&schema.Task{},
		&schema.ScheduledTask{},
		&schema.DailySummary{},
		&schema.UserStats{},
		&schema.AchievementUnlock{},
		&schema.SchemaMeta{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}
