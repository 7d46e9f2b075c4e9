package service

import "math"

// LevelInfo 等级与经验进度
type LevelInfo struct {
	Level        int     `json:"level"`
	TotalPoints  int     `json:"total_points"`
	CurrentFloor int     `json:"current_floor"` // 本级起点经验
	NextLevelXP  int     `json:"next_level_xp"` // 下一级门槛经验
	XPPercentage float64 `json:"xp_percentage"`
}

// LevelForPoints 等级公式 level = floor(sqrt(points/50)) + 1
// 0 分是 1 级 0%。
func LevelForPoints(totalPoints int) LevelInfo {
	if totalPoints < 0 {
		totalPoints = 0
	}
	level := int(math.Floor(math.Sqrt(float64(totalPoints)/50))) + 1

	floor := XPForLevel(level)
	next := XPForLevel(level + 1)

	pct := float64(totalPoints-floor) / float64(next-floor) * 100
	pct = math.Max(0, math.Min(100, pct))

	return LevelInfo{
		Level:        level,
		TotalPoints:  totalPoints,
		CurrentFloor: floor,
		NextLevelXP:  next,
		XPPercentage: round1(pct),
	}
}

// XPForLevel 升到 L 级所需累计经验 (L-1)^2 * 50
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return (level - 1) * (level - 1) * 50
}
