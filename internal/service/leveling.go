package service

import (
	"sort"

	"lingua_learn_backend/internal/model"
)

// AddXP 增加经验并重算等级进度。amount <= 0 时不做任何事。
// XPPoints 与 TotalExperience 同步递增，双份计数不漂移。
func AddXP(p *model.UserProgress, amount int, thresholds []model.LevelThreshold) {
	if p == nil || amount <= 0 {
		return
	}

	p.XPPoints += amount
	p.TotalExperience += amount
	ApplyLeveling(p, thresholds)
}

// ApplyLeveling 按权威经验值 XPPoints 重算等级相关派生字段
func ApplyLeveling(p *model.UserProgress, thresholds []model.LevelThreshold) {
	level, progress, nextXP := LevelForXP(p.XPPoints, thresholds)
	p.CurrentLevel = level
	p.LevelProgress = progress
	p.NextLevelXP = nextXP
}

// LevelForXP 查找经验值对应的等级、升级进度百分比和下一级门槛。
// 等级表为空时回落到 1 级 0%，等级展示不是安全敏感逻辑，不报错。
func LevelForXP(xp int, thresholds []model.LevelThreshold) (level, progress, nextXP int) {
	if len(thresholds) == 0 {
		return 1, 0, 0
	}

	sorted := make([]model.LevelThreshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].XPRequired < sorted[j].XPRequired
	})

	// 当前等级：门槛不超过经验值的最大一档
	current := sorted[0]
	var next *model.LevelThreshold
	for i := range sorted {
		if sorted[i].XPRequired <= xp {
			current = sorted[i]
		} else {
			next = &sorted[i]
			break
		}
	}

	if next == nil {
		// 已到最高等级
		return current.Level, 100, 0
	}

	span := next.XPRequired - current.XPRequired
	if span <= 0 {
		return current.Level, 100, next.XPRequired
	}

	progress = clampPercent((xp - current.XPRequired) * 100 / span)
	return current.Level, progress, next.XPRequired
}

// clampPercent 限制百分比在 [0,100]
func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
