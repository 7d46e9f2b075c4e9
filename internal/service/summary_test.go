package service

import (
	"context"
	"testing"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
	"github.com/gautriv/productivity/internal/testutil"
)

func intPtr(v int) *int { return &v }

func TestAggregateEmptyDay(t *testing.T) {
	s := Aggregate("2026-08-01", nil, testPointsPolicy())
	if s.TotalTasks != 0 || s.CompletionRate != 0 || s.NetPoints != 0 {
		t.Fatalf("empty day summary = %+v", s)
	}
	if s.Date != "2026-08-01" {
		t.Fatalf("date = %s", s.Date)
	}
}

func TestAggregateMixedStatuses(t *testing.T) {
	rows := []repository.TaskRow{
		{Status: schema.StatusCompleted, Complexity: 3, CognitiveLoad: schema.LoadDeepWork,
			TimeEstimate: 60, ActualTime: intPtr(90)}, // 80 分
		{Status: schema.StatusCompleted, Complexity: 1, CognitiveLoad: schema.LoadAdmin,
			TimeEstimate: 30, ActualTime: intPtr(20)}, // 15 分
		{Status: schema.StatusPending, Complexity: 2, CognitiveLoad: schema.LoadAdmin, TimeEstimate: 30},
		{Status: schema.StatusAbandoned, Complexity: 2, CognitiveLoad: schema.LoadAdmin,
			TimeEstimate: 30, RolledOverCount: 1, PenaltyPoints: 2},
	}

	s := Aggregate("2026-08-01", rows, testPointsPolicy())

	if s.TotalTasks != 4 {
		t.Fatalf("total = %d, want 4", s.TotalTasks)
	}
	// abandoned 不算完成也不算 pending
	if s.CompletedTasks != 2 || s.PendingTasks != 1 {
		t.Fatalf("completed=%d pending=%d, want 2/1", s.CompletedTasks, s.PendingTasks)
	}
	if s.PointsEarned != 95 {
		t.Fatalf("earned = %d, want 95", s.PointsEarned)
	}
	if s.PenaltyPoints != 2 || s.NetPoints != 93 {
		t.Fatalf("penalty=%d net=%d, want 2/93", s.PenaltyPoints, s.NetPoints)
	}
	if s.CompletionRate != 50.0 {
		t.Fatalf("rate = %v, want 50.0", s.CompletionRate)
	}
	if s.ActualTime != 110 || s.EstimatedTime != 150 {
		t.Fatalf("actual=%d estimated=%d, want 110/150", s.ActualTime, s.EstimatedTime)
	}
	if s.DeepWorkCompleted != 1 || s.AdminCompleted != 1 {
		t.Fatalf("load counts: deep=%d admin=%d", s.DeepWorkCompleted, s.AdminCompleted)
	}
}

func TestAggregateSubtaskBonusNeedsChildren(t *testing.T) {
	p := testPointsPolicy()
	with := Aggregate("2026-08-01", []repository.TaskRow{
		{Status: schema.StatusCompleted, Complexity: 3, CognitiveLoad: schema.LoadAdmin,
			TimeEstimate: 60, SubtaskCount: 2},
	}, p)
	without := Aggregate("2026-08-01", []repository.TaskRow{
		{Status: schema.StatusCompleted, Complexity: 3, CognitiveLoad: schema.LoadAdmin,
			TimeEstimate: 60},
	}, p)
	if with.PointsEarned-without.PointsEarned != 5 {
		t.Fatalf("subtask bonus = %d, want 5", with.PointsEarned-without.PointsEarned)
	}
}

func TestSummaryServiceCachesResult(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()

	task := seedTask(t, db, schema.LoadAdmin)
	st := seedScheduled(t, db, task.ID, "2026-08-01", schema.StatusCompleted)
	_ = st

	svc := NewSummaryService(
		repository.NewScheduleRepository(db),
		repository.NewSummaryRepository(db),
		testPointsPolicy(),
	)

	got, err := svc.GetDaily(ctx, "2026-08-01")
	if err != nil {
		t.Fatalf("GetDaily: %v", err)
	}
	if got.CompletedTasks != 1 || got.CompletionRate != 100 {
		t.Fatalf("summary = %+v", got)
	}

	// 缓存行写入
	cached, err := repository.NewSummaryRepository(db).GetByDate(ctx, "2026-08-01")
	if err != nil || cached == nil {
		t.Fatalf("cache row missing: %v", err)
	}
	if cached.PointsEarned != got.PointsEarned {
		t.Fatalf("cache earned = %d, want %d", cached.PointsEarned, got.PointsEarned)
	}

	// 重算后 Upsert 不产生第二行
	if _, err := svc.GetDaily(ctx, "2026-08-01"); err != nil {
		t.Fatalf("second GetDaily: %v", err)
	}
	var count int64
	db.Model(&schema.DailySummary{}).Where("date = ?", "2026-08-01").Count(&count)
	if count != 1 {
		t.Fatalf("cache rows = %d, want 1", count)
	}
}

func TestSummaryWindowOrderedOldestFirst(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()

	task := seedTask(t, db, schema.LoadAdmin)
	seedScheduled(t, db, task.ID, "2026-08-01", schema.StatusCompleted)
	seedScheduled(t, db, task.ID, "2026-08-03", schema.StatusPending)

	svc := NewSummaryService(
		repository.NewScheduleRepository(db),
		repository.NewSummaryRepository(db),
		testPointsPolicy(),
	)

	summaries, err := svc.GetWindow(ctx, "2026-08-03", 7)
	if err != nil {
		t.Fatalf("GetWindow: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
	if summaries[0].Date != "2026-08-01" || summaries[1].Date != "2026-08-03" {
		t.Fatalf("order = %s, %s", summaries[0].Date, summaries[1].Date)
	}
}

func TestSummaryRecentReadsCache(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()

	task := seedTask(t, db, schema.LoadAdmin)
	seedScheduled(t, db, task.ID, "2026-08-01", schema.StatusCompleted)
	seedScheduled(t, db, task.ID, "2026-08-02", schema.StatusCompleted)
	seedScheduled(t, db, task.ID, "2026-08-03", schema.StatusPending)

	svc := NewSummaryService(
		repository.NewScheduleRepository(db),
		repository.NewSummaryRepository(db),
		testPointsPolicy(),
	)

	// 只有刷新过缓存的日期会出现
	for _, date := range []string{"2026-08-01", "2026-08-02", "2026-08-03"} {
		if _, err := svc.GetDaily(ctx, date); err != nil {
			t.Fatalf("GetDaily %s: %v", date, err)
		}
	}

	recent, err := svc.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	// 最旧在前，截断只保留最近两天
	if recent[0].Date != "2026-08-02" || recent[1].Date != "2026-08-03" {
		t.Fatalf("order = %s, %s", recent[0].Date, recent[1].Date)
	}
}
