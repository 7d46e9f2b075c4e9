package service

import (
	"context"
	"testing"
	"time"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
	"github.com/gautriv/productivity/internal/testutil"
)

func mustParse(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.Parse(repository.DateLayout, date)
	if err != nil {
		t.Fatalf("parse %s: %v", date, err)
	}
	return d
}

func TestComputeStreaksEmpty(t *testing.T) {
	got := computeStreaks(nil, mustParse(t, "2026-08-10"))
	if got.Current != 0 || got.Longest != 0 {
		t.Fatalf("empty = %+v", got)
	}
}

func TestComputeStreaksCurrentRun(t *testing.T) {
	dates := []string{"2026-08-08", "2026-08-09", "2026-08-10"}
	got := computeStreaks(dates, mustParse(t, "2026-08-10"))
	if got.Current != 3 || got.Longest != 3 {
		t.Fatalf("got = %+v, want 3/3", got)
	}
}

func TestComputeStreaksTodayPendingFallsBack(t *testing.T) {
	// 今天还没完成任务：从昨天起算，连续记录不清零
	dates := []string{"2026-08-08", "2026-08-09"}
	got := computeStreaks(dates, mustParse(t, "2026-08-10"))
	if got.Current != 2 {
		t.Fatalf("current = %d, want 2", got.Current)
	}
}

func TestComputeStreaksBrokenByGap(t *testing.T) {
	// 前天完成，昨天今天都没有：当前为 0
	dates := []string{"2026-08-05", "2026-08-06", "2026-08-08"}
	got := computeStreaks(dates, mustParse(t, "2026-08-10"))
	if got.Current != 0 {
		t.Fatalf("current = %d, want 0", got.Current)
	}
	if got.Longest != 2 {
		t.Fatalf("longest = %d, want 2", got.Longest)
	}
}

func TestComputeStreaksLongestHistorical(t *testing.T) {
	// 历史上有 4 连，当前只有 1
	dates := []string{
		"2026-07-01", "2026-07-02", "2026-07-03", "2026-07-04",
		"2026-08-10",
	}
	got := computeStreaks(dates, mustParse(t, "2026-08-10"))
	if got.Current != 1 || got.Longest != 4 {
		t.Fatalf("got = %+v, want 1/4", got)
	}
}

func TestStreakTrackerReadsFromDB(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()

	task := seedTask(t, db, schema.LoadAdmin)
	seedScheduled(t, db, task.ID, "2026-08-09", schema.StatusCompleted)
	seedScheduled(t, db, task.ID, "2026-08-10", schema.StatusCompleted)
	seedScheduled(t, db, task.ID, "2026-08-11", schema.StatusPending)

	tracker := NewStreakTracker(repository.NewScheduleRepository(db))
	got, err := tracker.Streaks(ctx, "2026-08-11")
	if err != nil {
		t.Fatalf("Streaks: %v", err)
	}
	// 今天是 pending，锚点退到昨天
	if got.Current != 2 || got.Longest != 2 {
		t.Fatalf("got = %+v, want 2/2", got)
	}
}
