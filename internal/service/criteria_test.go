package service

import (
	"testing"
	"time"

	"lingua_learn_backend/internal/model"
)

func baseStats() *UserStats {
	return &UserStats{
		StreakDays:       5,
		LessonsCompleted: 8,
		TotalXP:          450,
		CompletedLessonIDs: map[string]bool{
			"beginner-basics-1": true,
			"beginner-basics-2": true,
		},
		CompletedModules: map[string]bool{
			"beginner-basics":  true,
			"beginner-phrases": false,
		},
		TotalModules:      2,
		VocabularyLearned: 40,
		GrammarMastered:   12,
		Now:               time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC), // 周三
	}
}

func TestEvaluateCriteriaThresholds(t *testing.T) {
	stats := baseStats()

	tests := []struct {
		name     string
		criteria model.AchievementCriteria
		want     bool
	}{
		{"streak met", model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 5}, true},
		{"streak not met", model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 6}, false},
		{"lessons met", model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 8}, true},
		{"lessons not met", model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 9}, false},
		{"vocabulary met", model.AchievementCriteria{Type: model.CriteriaVocabularyLearned, Threshold: 40}, true},
		{"grammar not met", model.AchievementCriteria{Type: model.CriteriaGrammarMastered, Threshold: 13}, false},
		{"specific lesson done", model.AchievementCriteria{Type: model.CriteriaSpecificLesson, TargetID: "beginner-basics-1"}, true},
		{"specific lesson missing target", model.AchievementCriteria{Type: model.CriteriaSpecificLesson}, false},
		{"module done", model.AchievementCriteria{Type: model.CriteriaModuleCompleted, TargetID: "beginner-basics"}, true},
		{"module not done", model.AchievementCriteria{Type: model.CriteriaModuleCompleted, TargetID: "beginner-phrases"}, false},
		{"unknown type", model.AchievementCriteria{Type: "no_such_type", Threshold: 1}, false},
		{"custom reserved", model.AchievementCriteria{Type: model.CriteriaCustom}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCriteria(tt.criteria, stats); got != tt.want {
				t.Errorf("EvaluateCriteria() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateLevelCompleted(t *testing.T) {
	stats := baseStats()

	met := model.AchievementCriteria{Type: model.CriteriaLevelCompleted, TargetID: "beginner"}
	if EvaluateCriteria(met, stats) {
		t.Error("level with an unfinished module should not count as completed")
	}

	stats.CompletedModules["beginner-phrases"] = true
	if !EvaluateCriteria(met, stats) {
		t.Error("level should complete once all its modules are done")
	}

	unknown := model.AchievementCriteria{Type: model.CriteriaLevelCompleted, TargetID: "advanced"}
	if EvaluateCriteria(unknown, stats) {
		t.Error("level with no known modules must not count as completed")
	}
}

func TestEvaluateCurriculumCompleted(t *testing.T) {
	stats := baseStats()
	c := model.AchievementCriteria{Type: model.CriteriaCurriculumCompleted}

	if EvaluateCriteria(c, stats) {
		t.Error("curriculum not done while a module is unfinished")
	}

	stats.CompletedModules["beginner-phrases"] = true
	if !EvaluateCriteria(c, stats) {
		t.Error("curriculum should complete when every module is done")
	}

	empty := &UserStats{CompletedModules: map[string]bool{}, Now: stats.Now}
	if EvaluateCriteria(c, empty) {
		t.Error("empty curriculum must not count as completed")
	}
}

func TestEvaluatePronunciationAccuracy(t *testing.T) {
	stats := baseStats()
	stats.PronunciationScores = []float64{90, 85, 70, 95, 80}

	// 门槛 80 的合格次数为 4
	c := model.AchievementCriteria{Type: model.CriteriaPronunciationAccuracy, Threshold: 80, ExerciseCount: 4}
	if !EvaluateCriteria(c, stats) {
		t.Error("4 accurate exercises should satisfy count 4")
	}

	c.ExerciseCount = 5
	if EvaluateCriteria(c, stats) {
		t.Error("4 accurate exercises must not satisfy count 5")
	}
	if got := CriteriaProgress(c, stats); got != 80 {
		t.Errorf("progress = %d, want 80", got)
	}

	// 缺失 exerciseCount 按 1 次处理
	c.ExerciseCount = 0
	if !EvaluateCriteria(c, stats) {
		t.Error("missing exerciseCount should default to 1")
	}
}

func TestEvaluatePracticeTime(t *testing.T) {
	early := 7
	late := 23
	stats := baseStats()

	tests := []struct {
		name     string
		hour     int
		criteria model.AchievementCriteria
		want     bool
	}{
		{"before hour met", 6, model.AchievementCriteria{Type: model.CriteriaPracticeTime, BeforeHour: &early}, true},
		{"before hour missed", 8, model.AchievementCriteria{Type: model.CriteriaPracticeTime, BeforeHour: &early}, false},
		{"after hour met", 23, model.AchievementCriteria{Type: model.CriteriaPracticeTime, AfterHour: &late}, true},
		{"after hour missed", 22, model.AchievementCriteria{Type: model.CriteriaPracticeTime, AfterHour: &late}, false},
		{"no hours configured", 6, model.AchievementCriteria{Type: model.CriteriaPracticeTime}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats.Now = time.Date(2025, time.June, 4, tt.hour, 30, 0, 0, time.UTC)
			if got := EvaluateCriteria(tt.criteria, stats); got != tt.want {
				t.Errorf("hour=%d: got %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestEvaluateWeekendPractice(t *testing.T) {
	c := model.AchievementCriteria{Type: model.CriteriaWeekendPractice}
	stats := baseStats()
	stats.PracticeDates = []time.Time{
		time.Date(2025, time.May, 31, 10, 0, 0, 0, time.UTC), // 周六
		time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC), // 周日
	}

	// 周三判定不通过，即便历史满足
	stats.Now = time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)
	if EvaluateCriteria(c, stats) {
		t.Error("weekend criteria must only pass when checked on a weekend")
	}

	// 周日判定通过
	stats.Now = time.Date(2025, time.June, 8, 12, 0, 0, 0, time.UTC)
	if !EvaluateCriteria(c, stats) {
		t.Error("weekend criteria should pass on Sunday with both days in history")
	}

	// 历史里缺周六则不通过
	stats.PracticeDates = stats.PracticeDates[1:]
	if EvaluateCriteria(c, stats) {
		t.Error("weekend criteria requires practice on both Saturday and Sunday")
	}
}

func TestCriteriaProgress(t *testing.T) {
	stats := baseStats()

	tests := []struct {
		name     string
		criteria model.AchievementCriteria
		want     int
	}{
		{"streak partial", model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 10}, 50},
		{"streak capped", model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 4}, 100},
		{"lessons partial", model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 10}, 80},
		{"binary met", model.AchievementCriteria{Type: model.CriteriaModuleCompleted, TargetID: "beginner-basics"}, 100},
		{"binary unmet", model.AchievementCriteria{Type: model.CriteriaModuleCompleted, TargetID: "beginner-phrases"}, 0},
		{"unknown type", model.AchievementCriteria{Type: "no_such_type"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CriteriaProgress(tt.criteria, stats); got != tt.want {
				t.Errorf("CriteriaProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}
