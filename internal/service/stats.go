package service

import (
	"time"

	"lingua_learn_backend/internal/model"
)

// UserStats 成就判定用的用户统计快照，只读
type UserStats struct {
	StreakDays          int
	LongestStreak       int
	LessonsCompleted    int
	TotalXP             int
	CompletedLessonIDs  map[string]bool
	CompletedModules    map[string]bool // 模块ID -> 推导出的完成状态
	TotalModules        int
	VocabularyLearned   int
	GrammarMastered     int
	PronunciationScores []float64 // 每次发音练习的准确率
	PracticeDates       []time.Time
	Now                 time.Time
}

// BuildUserStats 从进度记录和课程目录组装统计快照。
// 模块完成状态在这里重新推导，而不是读任何存储的标志。
func BuildUserStats(p *model.UserProgress, levels []model.CurriculumLevel, now time.Time) *UserStats {
	completed := completedLessonSet(p)

	modules := make(map[string]bool)
	for li := range levels {
		for mi := range levels[li].Modules {
			mod := &levels[li].Modules[mi]
			modules[mod.ID] = IsModuleCompleted(mod, completed)
		}
	}

	stats := &UserStats{
		StreakDays:         p.CurrentStreak,
		LongestStreak:      p.LongestStreak,
		LessonsCompleted:   p.LessonsCompleted,
		TotalXP:            p.XPPoints,
		CompletedLessonIDs: completed,
		CompletedModules:   modules,
		TotalModules:       len(modules),
		VocabularyLearned:  p.VocabularyLearned,
		GrammarMastered:    p.GrammarMastered,
		Now:                now,
	}

	for _, session := range p.PracticeSessions {
		stats.PracticeDates = append(stats.PracticeDates, session.PracticedAt)
		if session.ActivityType == "pronunciation" {
			stats.PronunciationScores = append(stats.PronunciationScores, session.Score)
		}
	}

	return stats
}
