package service

import (
	"lingua_learn_backend/internal/model"
)

// Reconcile 对账：从课时记录重算派生计数，修复双份经验计数的漂移。
// 每次读取进度时调用，避免陈旧写入透出到展示层。返回是否有修正。
//
// 漂移只会是 XPPoints 高于 TotalExperience（历史上成就奖励只写
// XPPoints），对账永远把 TotalExperience 抬平，绝不反向压低。
func Reconcile(p *model.UserProgress, thresholds []model.LevelThreshold) bool {
	if p == nil {
		return false
	}

	changed := false

	count := 0
	for _, rec := range p.LessonRecords {
		if rec.Completed {
			count++
		}
	}
	if p.LessonsCompleted != count {
		p.LessonsCompleted = count
		changed = true
	}

	if p.XPPoints > p.TotalExperience {
		p.TotalExperience = p.XPPoints
		changed = true
	}

	// 等级派生字段跟着权威经验值走
	level, progress, nextXP := LevelForXP(p.XPPoints, thresholds)
	if p.CurrentLevel != level || p.LevelProgress != progress || p.NextLevelXP != nextXP {
		p.CurrentLevel = level
		p.LevelProgress = progress
		p.NextLevelXP = nextXP
		changed = true
	}

	return changed
}
