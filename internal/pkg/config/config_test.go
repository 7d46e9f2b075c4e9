package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.App.Name != "pulse" {
		t.Fatalf("app.name = %s", cfg.App.Name)
	}
	if cfg.Scoring.LoadMultipliers["deep_work"] != 2.0 {
		t.Fatalf("deep_work multiplier = %v", cfg.Scoring.LoadMultipliers["deep_work"])
	}
	if cfg.Scoring.PenaltyPerRollover != 2 || cfg.Scoring.PenaltyBudget != 100 {
		t.Fatalf("scoring defaults = %+v", cfg.Scoring)
	}
	if cfg.Burnout.WindowDays != 14 || cfg.Burnout.MinActiveDays != 3 {
		t.Fatalf("burnout defaults = %+v", cfg.Burnout)
	}
	sum := 0.0
	for _, share := range cfg.Balance.Targets {
		sum += share
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("balance targets sum = %v, want 1", sum)
	}
	w := cfg.Scoring
	if total := w.CompletionWeight + w.PointsWeight + w.ConsistencyWeight + w.PenaltyWeight; total < 0.999 || total > 1.001 {
		t.Fatalf("score weights sum = %v, want 1", total)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	cfg.App.LogLevel = "debug"
	cfg.Scoring.SubtaskBonus = 8
	cfg.Pattern.StreakMinDays = 5

	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	if err := WriteFile(path, cfg); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if got.App.LogLevel != "debug" {
		t.Fatalf("log_level = %s, want debug", got.App.LogLevel)
	}
	if got.Scoring.SubtaskBonus != 8 {
		t.Fatalf("subtask_bonus = %d, want 8", got.Scoring.SubtaskBonus)
	}
	if got.Pattern.StreakMinDays != 5 {
		t.Fatalf("streak_min_days = %d, want 5", got.Pattern.StreakMinDays)
	}
	if got.Scoring.LoadMultipliers["learning"] != 1.5 {
		t.Fatalf("learning multiplier = %v", got.Scoring.LoadMultipliers["learning"])
	}
}

func TestWriteFileRejectsEmptyArgs(t *testing.T) {
	if err := WriteFile("", &Config{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if err := WriteFile(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Fatalf("expected error for nil cfg")
	}
}
