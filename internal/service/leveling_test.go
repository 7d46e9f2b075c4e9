package service

import (
	"testing"

	"pgregory.net/rapid"
)

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points int
		level  int
	}{
		{0, 1},
		{49, 1},
		{50, 2}, // sqrt(1)=1 → 2
		{199, 2},
		{200, 3}, // sqrt(4)=2 → 3
		{449, 3},
		{450, 4},
		{1250, 6}, // sqrt(25)=5 → 6
	}
	for _, tt := range tests {
		info := LevelForPoints(tt.points)
		if info.Level != tt.level {
			t.Fatalf("LevelForPoints(%d).Level = %d, want %d", tt.points, info.Level, tt.level)
		}
	}
}

func TestLevelZeroPoints(t *testing.T) {
	info := LevelForPoints(0)
	if info.Level != 1 || info.XPPercentage != 0 {
		t.Fatalf("zero points = %+v", info)
	}
	if info.NextLevelXP != 50 {
		t.Fatalf("next level xp = %d, want 50", info.NextLevelXP)
	}
}

func TestXPForLevel(t *testing.T) {
	wants := map[int]int{1: 0, 2: 50, 3: 200, 4: 450, 5: 800}
	for level, want := range wants {
		if got := XPForLevel(level); got != want {
			t.Fatalf("XPForLevel(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestLevelProgressWithinBand(t *testing.T) {
	// 125 分：2 级（门槛 50..200），进度 (125-50)/150 = 50%
	info := LevelForPoints(125)
	if info.Level != 2 {
		t.Fatalf("level = %d, want 2", info.Level)
	}
	if info.XPPercentage != 50 {
		t.Fatalf("xp%% = %v, want 50", info.XPPercentage)
	}
}

func TestLevelProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.IntRange(0, 1_000_000).Draw(t, "points")
		info := LevelForPoints(points)

		if info.Level < 1 {
			t.Fatalf("level = %d", info.Level)
		}
		if info.XPPercentage < 0 || info.XPPercentage > 100 {
			t.Fatalf("xp%% = %v", info.XPPercentage)
		}
		// 积分落在本级门槛与下一级门槛之间
		if points < info.CurrentFloor || points >= info.NextLevelXP {
			t.Fatalf("points %d outside [%d, %d)", points, info.CurrentFloor, info.NextLevelXP)
		}
		// 多一分不会降级
		next := LevelForPoints(points + 1)
		if next.Level < info.Level {
			t.Fatalf("level dropped: %d -> %d", info.Level, next.Level)
		}
	})
}
