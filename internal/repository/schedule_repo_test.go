package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gautriv/productivity/internal/schema"
	"github.com/gautriv/productivity/internal/testutil"
	"gorm.io/gorm"
)

func createTask(t *testing.T, db *gorm.DB, complexity int, load string) *schema.Task {
	t.Helper()
	task := &schema.Task{Title: "task", Complexity: complexity, CognitiveLoad: load, TimeEstimate: 60}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func createInstance(t *testing.T, db *gorm.DB, taskID int64, date, status string) *schema.ScheduledTask {
	t.Helper()
	st := &schema.ScheduledTask{TaskID: taskID, ScheduledDate: date, Status: status}
	if err := db.Create(st).Error; err != nil {
		t.Fatalf("create instance: %v", err)
	}
	return st
}

func TestScheduleRepositoryGetByDateJoinsTaskFields(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	parent := createTask(t, db, 4, schema.LoadDeepWork)
	child := &schema.Task{Title: "child", Complexity: 2, CognitiveLoad: schema.LoadAdmin, TimeEstimate: 30, ParentID: &parent.ID}
	if err := db.Create(child).Error; err != nil {
		t.Fatalf("create child: %v", err)
	}
	archived := &schema.Task{Title: "gone", Complexity: 1, CognitiveLoad: schema.LoadAdmin, TimeEstimate: 30, ParentID: &parent.ID, Archived: true}
	if err := db.Create(archived).Error; err != nil {
		t.Fatalf("create archived child: %v", err)
	}
	createInstance(t, db, parent.ID, "2026-08-10", schema.StatusPending)

	rows, err := repo.GetByDate(ctx, "2026-08-10")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Title != "task" || row.Complexity != 4 || row.CognitiveLoad != schema.LoadDeepWork {
		t.Fatalf("joined task fields = %+v", row)
	}
	// 归档子任务不计入 subtask_count
	if row.SubtaskCount != 1 {
		t.Fatalf("subtask_count = %d, want 1", row.SubtaskCount)
	}
}

func TestScheduleRepositoryGetByDateRangeOrdered(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	task := createTask(t, db, 3, schema.LoadAdmin)
	createInstance(t, db, task.ID, "2026-08-12", schema.StatusPending)
	createInstance(t, db, task.ID, "2026-08-10", schema.StatusCompleted)
	createInstance(t, db, task.ID, "2026-08-11", schema.StatusPending)
	createInstance(t, db, task.ID, "2026-08-20", schema.StatusPending) // 区间外

	rows, err := repo.GetByDateRange(ctx, "2026-08-10", "2026-08-12")
	if err != nil {
		t.Fatalf("GetByDateRange error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, want := range []string{"2026-08-10", "2026-08-11", "2026-08-12"} {
		if rows[i].ScheduledDate != want {
			t.Fatalf("rows[%d].ScheduledDate = %s, want %s", i, rows[i].ScheduledDate, want)
		}
	}
}

func TestScheduleRepositoryGetDailyCounts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	task := createTask(t, db, 3, schema.LoadAdmin)
	createInstance(t, db, task.ID, "2026-08-10", schema.StatusCompleted)
	createInstance(t, db, task.ID, "2026-08-10", schema.StatusPending)
	createInstance(t, db, task.ID, "2026-08-11", schema.StatusCompleted)

	counts, err := repo.GetDailyCounts(ctx)
	if err != nil {
		t.Fatalf("GetDailyCounts error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %d, want 2", len(counts))
	}
	if counts[0].Date != "2026-08-10" || counts[0].Total != 2 || counts[0].Completed != 1 {
		t.Fatalf("counts[0] = %+v", counts[0])
	}
	if counts[1].Date != "2026-08-11" || counts[1].Total != 1 || counts[1].Completed != 1 {
		t.Fatalf("counts[1] = %+v", counts[1])
	}
}

func TestScheduleRepositoryDistinctCompletionDates(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	task := createTask(t, db, 3, schema.LoadAdmin)
	createInstance(t, db, task.ID, "2026-08-11", schema.StatusCompleted)
	createInstance(t, db, task.ID, "2026-08-10", schema.StatusCompleted)
	createInstance(t, db, task.ID, "2026-08-10", schema.StatusCompleted)
	createInstance(t, db, task.ID, "2026-08-12", schema.StatusAbandoned)

	dates, err := repo.DistinctCompletionDates(ctx)
	if err != nil {
		t.Fatalf("DistinctCompletionDates error: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-08-10" || dates[1] != "2026-08-11" {
		t.Fatalf("dates = %v", dates)
	}
}

func TestScheduleRepositoryGetSimilarBefore(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	match := createTask(t, db, 3, schema.LoadDeepWork)
	createInstance(t, db, match.ID, "2026-08-01", schema.StatusCompleted)
	createInstance(t, db, match.ID, "2026-08-10", schema.StatusPending) // 日期不早于基准

	other := createTask(t, db, 2, schema.LoadDeepWork) // 复杂度不同
	createInstance(t, db, other.ID, "2026-08-01", schema.StatusCompleted)

	rows, err := repo.GetSimilarBefore(ctx, 3, schema.LoadDeepWork, "2026-08-10", 50)
	if err != nil {
		t.Fatalf("GetSimilarBefore error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].ScheduledDate != "2026-08-01" || rows[0].Complexity != 3 {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
}

func TestScheduleRepositoryTotalPenalties(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	total, err := repo.TotalPenalties(ctx)
	if err != nil {
		t.Fatalf("TotalPenalties error: %v", err)
	}
	if total != 0 {
		t.Fatalf("empty total = %d, want 0", total)
	}

	task := createTask(t, db, 3, schema.LoadAdmin)
	st1 := createInstance(t, db, task.ID, "2026-08-10", schema.StatusAbandoned)
	st2 := createInstance(t, db, task.ID, "2026-08-11", schema.StatusAbandoned)
	db.Model(st1).Update("penalty_points", 2)
	db.Model(st2).Update("penalty_points", 4)

	total, err = repo.TotalPenalties(ctx)
	if err != nil {
		t.Fatalf("TotalPenalties error: %v", err)
	}
	if total != 6 {
		t.Fatalf("total = %d, want 6", total)
	}
}

func TestScheduleRepositoryExistsForTaskDate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	task := createTask(t, db, 3, schema.LoadAdmin)
	createInstance(t, db, task.ID, "2026-08-10", schema.StatusPending)

	exists, err := repo.ExistsForTaskDate(ctx, task.ID, "2026-08-10")
	if err != nil {
		t.Fatalf("ExistsForTaskDate error: %v", err)
	}
	if !exists {
		t.Fatalf("exists = false, want true")
	}
	exists, err = repo.ExistsForTaskDate(ctx, task.ID, "2026-08-11")
	if err != nil {
		t.Fatalf("ExistsForTaskDate error: %v", err)
	}
	if exists {
		t.Fatalf("exists = true, want false")
	}
}

func TestScheduleRepositoryUpdateStatusCompletion(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	task := createTask(t, db, 3, schema.LoadAdmin)
	st := createInstance(t, db, task.ID, "2026-08-10", schema.StatusPending)

	actual := 45
	completedAt := time.Date(2026, 8, 10, 15, 30, 0, 0, time.Local)
	if err := repo.UpdateStatus(ctx, st.ID, schema.StatusCompleted, &actual, &completedAt); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	var got schema.ScheduledTask
	if err := db.First(&got, st.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != schema.StatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if got.ActualTime == nil || *got.ActualTime != 45 {
		t.Fatalf("actual_time = %v", got.ActualTime)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completedAt) {
		t.Fatalf("completed_at = %v", got.CompletedAt)
	}
}
