package service

// PointsPolicy 积分计算策略（可替换）
type PointsPolicy interface {
	TaskPoints(complexity int, load string, timeEstimate int, hasSubtasks bool) int
	Penalty(rolledOverCount int) int
}

// DefaultPointsPolicy 默认积分策略
// points = (complexity*10 + (estimate/30)*5) * loadMultiplier + subtaskBonus
// 倍率表来自配置，不做分支硬编码。
type DefaultPointsPolicy struct {
	LoadMultipliers    map[string]float64
	SubtaskBonus       int
	PenaltyPerRollover int
}

// NewDefaultPointsPolicy 按配置创建积分策略
func NewDefaultPointsPolicy(multipliers map[string]float64, subtaskBonus, penaltyPerRollover int) *DefaultPointsPolicy {
	return &DefaultPointsPolicy{
		LoadMultipliers:    multipliers,
		SubtaskBonus:       subtaskBonus,
		PenaltyPerRollover: penaltyPerRollover,
	}
}

// TaskPoints 计算任务积分
// 上游校验由存储层负责，这里仍然做防御性钳制：complexity 限制在 [1,5]，
// 预估时间不为负。结果恒为非负。
func (p *DefaultPointsPolicy) TaskPoints(complexity int, load string, timeEstimate int, hasSubtasks bool) int {
	if complexity < 1 {
		complexity = 1
	}
	if complexity > 5 {
		complexity = 5
	}
	if timeEstimate < 0 {
		timeEstimate = 0
	}

	base := float64(complexity * 10)
	timeBonus := float64(timeEstimate/30) * 5

	multiplier, ok := p.LoadMultipliers[load]
	if !ok {
		multiplier = 1.0
	}

	points := (base + timeBonus) * multiplier
	if hasSubtasks {
		points += float64(p.SubtaskBonus)
	}

	return int(points)
}

// Penalty 顺延累计惩罚：第 n 次顺延惩罚 2n 分，单调不减。
func (p *DefaultPointsPolicy) Penalty(rolledOverCount int) int {
	if rolledOverCount < 0 {
		return 0
	}
	return rolledOverCount * p.PenaltyPerRollover
}
