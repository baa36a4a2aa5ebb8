package service

import (
	"strings"
	"time"

	"lingua_learn_backend/internal/model"
)

// 成就条件判定。无状态纯函数：同一快照多次判定结果一致
// （practice_time / weekend_practice 依赖快照里的 Now，属文档化行为）。
// 未知类型与缺失参数一律降级为未达成，坏目录条目不挡住整轮检查。

// EvaluateCriteria 判定条件是否满足
func EvaluateCriteria(c model.AchievementCriteria, stats *UserStats) bool {
	if stats == nil {
		return false
	}

	switch c.Type {
	case model.CriteriaStreakDays:
		return stats.StreakDays >= c.Threshold

	case model.CriteriaLessonsCompleted:
		return stats.LessonsCompleted >= c.Threshold

	case model.CriteriaSpecificLesson:
		return c.TargetID != "" && stats.CompletedLessonIDs[c.TargetID]

	case model.CriteriaModuleCompleted:
		return c.TargetID != "" && stats.CompletedModules[c.TargetID]

	case model.CriteriaLevelCompleted:
		return levelCompleted(c.TargetID, stats)

	case model.CriteriaCurriculumCompleted:
		if stats.TotalModules == 0 {
			return false
		}
		for _, done := range stats.CompletedModules {
			if !done {
				return false
			}
		}
		return true

	case model.CriteriaVocabularyLearned:
		return stats.VocabularyLearned >= c.Threshold

	case model.CriteriaGrammarMastered:
		return stats.GrammarMastered >= c.Threshold

	case model.CriteriaPronunciationAccuracy:
		return accurateExerciseCount(c, stats) >= requiredExercises(c)

	case model.CriteriaPracticeTime:
		// 只依赖判定时刻的本地小时数，同一状态跨时段可能翻转
		if c.BeforeHour == nil && c.AfterHour == nil {
			return false
		}
		hour := stats.Now.Hour()
		if c.BeforeHour != nil && hour < *c.BeforeHour {
			return true
		}
		if c.AfterHour != nil && hour >= *c.AfterHour {
			return true
		}
		return false

	case model.CriteriaWeekendPractice:
		wd := stats.Now.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			return false
		}
		return practicedOnWeekday(stats, time.Saturday) && practicedOnWeekday(stats, time.Sunday)

	case model.CriteriaCustom:
		// 预留类型，永远未达成
		return false

	default:
		return false
	}
}

// CriteriaProgress 估算未获得成就的完成度 0-100
func CriteriaProgress(c model.AchievementCriteria, stats *UserStats) int {
	if stats == nil {
		return 0
	}

	switch c.Type {
	case model.CriteriaStreakDays:
		return progressRatio(stats.StreakDays, c.Threshold)

	case model.CriteriaLessonsCompleted:
		return progressRatio(stats.LessonsCompleted, c.Threshold)

	case model.CriteriaVocabularyLearned:
		return progressRatio(stats.VocabularyLearned, c.Threshold)

	case model.CriteriaGrammarMastered:
		return progressRatio(stats.GrammarMastered, c.Threshold)

	case model.CriteriaPronunciationAccuracy:
		return progressRatio(accurateExerciseCount(c, stats), requiredExercises(c))

	case model.CriteriaSpecificLesson,
		model.CriteriaModuleCompleted,
		model.CriteriaLevelCompleted,
		model.CriteriaCurriculumCompleted,
		model.CriteriaPracticeTime,
		model.CriteriaWeekendPractice:
		if EvaluateCriteria(c, stats) {
			return 100
		}
		return 0

	default:
		return 0
	}
}

// levelCompleted 级别下所有模块都完成才算完成。
// 模块ID按 "级别-..." 命名空间归属级别，级别下没有已知模块时视为未完成。
func levelCompleted(levelID string, stats *UserStats) bool {
	if levelID == "" {
		return false
	}
	prefix := levelID + "-"
	found := false
	for id, done := range stats.CompletedModules {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		found = true
		if !done {
			return false
		}
	}
	return found
}

// accurateExerciseCount 准确率达到门槛的发音练习次数
func accurateExerciseCount(c model.AchievementCriteria, stats *UserStats) int {
	count := 0
	for _, score := range stats.PronunciationScores {
		if score >= float64(c.Threshold) {
			count++
		}
	}
	return count
}

// requiredExercises 缺失 exerciseCount 参数时按 1 次处理
func requiredExercises(c model.AchievementCriteria) int {
	if c.ExerciseCount <= 0 {
		return 1
	}
	return c.ExerciseCount
}

// practicedOnWeekday 历史练习日里是否出现过指定的星期几
func practicedOnWeekday(stats *UserStats, day time.Weekday) bool {
	for _, d := range stats.PracticeDates {
		if d.Weekday() == day {
			return true
		}
	}
	return false
}

// progressRatio 按比例折算进度，目标缺失时退化为 0/100 二值
func progressRatio(value, target int) int {
	if target <= 0 {
		if value > 0 {
			return 100
		}
		return 0
	}
	return clampPercent(value * 100 / target)
}
