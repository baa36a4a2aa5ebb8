package service

import (
	"sort"
	"time"

	"lingua_learn_backend/internal/model"
)

// 解锁状态每次读取时从完成历史现算，不信任任何落库的解锁标志。
// 跨级别策略：级别入口只看经验门槛，不要求下级模块全部完成，
// 学得快的用户可以带着未完成的初级模块进入高级内容（产品决定）。

// ProgressView 返回给调用方的完整进度视图
// swagger:model ProgressView
type ProgressView struct {
	UserID            uint        `json:"userId"`
	TotalExperience   int         `json:"totalExperience"`
	XPPoints          int         `json:"xpPoints"`
	CurrentLevel      int         `json:"currentLevel"`
	LevelProgress     int         `json:"levelProgress"`
	NextLevelXP       int         `json:"nextLevelXp"`
	LessonsCompleted  int         `json:"lessonsCompleted"`
	VocabularyLearned int         `json:"vocabularyLearned"`
	GrammarMastered   int         `json:"grammarMastered"`
	Streak            StreakView  `json:"streak"`
	ActiveLevelID     string      `json:"activeLevelId"`
	CurrentModuleID   string      `json:"currentModuleId"`
	CurrentLessonID   string      `json:"currentLessonId"`
	Levels            []LevelView `json:"levels"`
}

type StreakView struct {
	Current          int        `json:"current"`
	Longest          int        `json:"longest"`
	LastPracticeDate *time.Time `json:"lastPracticeDate"`
}

type LevelView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	RequiredXP int          `json:"requiredXp"`
	Unlocked   bool         `json:"unlocked"`
	Modules    []ModuleView `json:"modules"`
}

// ModuleView 模块视图，完成度完全由课时记录与目录联合推导
type ModuleView struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Unlocked         bool         `json:"unlocked"`
	Completed        bool         `json:"completed"`
	Progress         int          `json:"progress"` // 0-100
	LessonsCompleted int          `json:"lessonsCompleted"`
	TotalLessons     int          `json:"totalLessons"`
	Lessons          []LessonView `json:"lessons"`
}

type LessonView struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Order             int      `json:"order"`
	XPReward          int      `json:"xpReward"`
	Unlocked          bool     `json:"unlocked"`
	Completed         bool     `json:"completed"`
	Score             int      `json:"score"`
	Attempts          int      `json:"attempts"`
	XPEarned          int      `json:"xpEarned"`
	CurrentSection    string   `json:"currentSection,omitempty"`
	CompletedSections []string `json:"completedSections,omitempty"`
}

// completedLessonSet 从课时记录构建已完成课时集合
func completedLessonSet(p *model.UserProgress) map[string]bool {
	set := make(map[string]bool, len(p.LessonRecords))
	for _, rec := range p.LessonRecords {
		if rec.Completed {
			set[rec.LessonID] = true
		}
	}
	return set
}

// IsModuleCompleted 模块内全部课时均完成时视为完成；空模块永远未完成
func IsModuleCompleted(mod *model.CurriculumModule, completed map[string]bool) bool {
	if len(mod.Lessons) == 0 {
		return false
	}
	count := 0
	for _, lesson := range mod.Lessons {
		if completed[lesson.ID] {
			count++
		}
	}
	return count >= len(mod.Lessons)
}

// IsModuleUnlocked 判定模块是否解锁：
// 级别首个模块看经验门槛，其余模块看前一个模块是否全部完成。
// modules 必须是该级别下按 Order 升序排好的切片。
func IsModuleUnlocked(mod *model.CurriculumModule, level *model.CurriculumLevel, modules []model.CurriculumModule, completed map[string]bool, p *model.UserProgress) bool {
	idx := -1
	for i := range modules {
		if modules[i].ID == mod.ID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return p.TotalExperience >= level.RequiredXP
	}
	return IsModuleCompleted(&modules[idx-1], completed)
}

// IsLessonUnlocked 判定课时是否解锁：模块锁则课时锁；
// 首个课时直接解锁，后续课时要求前一课时已完成。
// lessons 必须是模块内按 Order 升序排好的切片。
func IsLessonUnlocked(lesson *model.CurriculumLesson, moduleUnlocked bool, lessons []model.CurriculumLesson, completed map[string]bool) bool {
	if !moduleUnlocked {
		return false
	}
	idx := -1
	for i := range lessons {
		if lessons[i].ID == lesson.ID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return true
	}
	return completed[lessons[idx-1].ID]
}

// BuildProgressView 对整个课程目录跑一遍解锁推导，组装进度视图
func BuildProgressView(p *model.UserProgress, levels []model.CurriculumLevel) *ProgressView {
	completed := completedLessonSet(p)
	records := make(map[string]*model.LessonRecord, len(p.LessonRecords))
	for i := range p.LessonRecords {
		records[p.LessonRecords[i].LessonID] = &p.LessonRecords[i]
	}

	sortedLevels := make([]model.CurriculumLevel, len(levels))
	copy(sortedLevels, levels)
	sort.Slice(sortedLevels, func(i, j int) bool { return sortedLevels[i].Order < sortedLevels[j].Order })

	view := &ProgressView{
		UserID:            p.UserID,
		TotalExperience:   p.TotalExperience,
		XPPoints:          p.XPPoints,
		CurrentLevel:      p.CurrentLevel,
		LevelProgress:     p.LevelProgress,
		NextLevelXP:       p.NextLevelXP,
		LessonsCompleted:  p.LessonsCompleted,
		VocabularyLearned: p.VocabularyLearned,
		GrammarMastered:   p.GrammarMastered,
		ActiveLevelID:     p.ActiveLevelID,
		CurrentModuleID:   p.CurrentModuleID,
		CurrentLessonID:   p.CurrentLessonID,
		Streak: StreakView{
			Current:          p.CurrentStreak,
			Longest:          p.LongestStreak,
			LastPracticeDate: p.LastPracticeDate,
		},
		Levels: make([]LevelView, 0, len(sortedLevels)),
	}

	for li := range sortedLevels {
		level := &sortedLevels[li]

		modules := make([]model.CurriculumModule, len(level.Modules))
		copy(modules, level.Modules)
		sort.Slice(modules, func(i, j int) bool { return modules[i].Order < modules[j].Order })

		lv := LevelView{
			ID:         level.ID,
			Name:       level.Name,
			RequiredXP: level.RequiredXP,
			Unlocked:   p.TotalExperience >= level.RequiredXP,
			Modules:    make([]ModuleView, 0, len(modules)),
		}

		for mi := range modules {
			mod := &modules[mi]

			lessons := make([]model.CurriculumLesson, len(mod.Lessons))
			copy(lessons, mod.Lessons)
			sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })

			unlocked := IsModuleUnlocked(mod, level, modules, completed, p)
			done := 0
			for _, lesson := range lessons {
				if completed[lesson.ID] {
					done++
				}
			}

			mv := ModuleView{
				ID:               mod.ID,
				Title:            mod.Title,
				Unlocked:         unlocked,
				Completed:        len(lessons) > 0 && done >= len(lessons),
				LessonsCompleted: done,
				TotalLessons:     len(lessons),
				Lessons:          make([]LessonView, 0, len(lessons)),
			}
			if len(lessons) > 0 {
				mv.Progress = clampPercent(done * 100 / len(lessons))
			}

			for i := range lessons {
				lesson := &lessons[i]
				lw := LessonView{
					ID:       lesson.ID,
					Title:    lesson.Title,
					Order:    lesson.Order,
					XPReward: lesson.XPReward,
					Unlocked: IsLessonUnlocked(lesson, unlocked, lessons, completed),
				}
				if rec, ok := records[lesson.ID]; ok {
					lw.Completed = rec.Completed
					lw.Score = rec.Score
					lw.Attempts = rec.Attempts
					lw.XPEarned = rec.XPEarned
					lw.CurrentSection = rec.CurrentSection
					lw.CompletedSections = rec.CompletedSections
				}
				mv.Lessons = append(mv.Lessons, lw)
			}

			lv.Modules = append(lv.Modules, mv)
		}

		view.Levels = append(view.Levels, lv)
	}

	return view
}
