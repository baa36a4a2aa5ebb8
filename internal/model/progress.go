package model

import (
	"time"
)

// 课时内固定的四个小节，按顺序推进
const (
	SectionIntroduction = "introduction"
	SectionVocabulary   = "vocabulary"
	SectionGrammar      = "grammar"
	SectionPractice     = "practice"
)

// SectionOrder 小节的固定顺序
var SectionOrder = []string{SectionIntroduction, SectionVocabulary, SectionGrammar, SectionPractice}

// UserProgress 每个用户唯一的进度主记录
// TotalExperience 与 XPPoints 是历史遗留的双份经验计数，XPPoints 为权威值
// （成就奖励只写 XPPoints），两者的漂移由读取时的对账逻辑修复。
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID            uint       `gorm:"uniqueIndex;not null" json:"userId"`
	TotalExperience   int        `gorm:"default:0" json:"totalExperience"`
	XPPoints          int        `gorm:"default:0" json:"xpPoints"`
	CurrentLevel      int        `gorm:"default:1" json:"currentLevel"`
	LevelProgress     int        `gorm:"default:0" json:"levelProgress"` // 0-100
	NextLevelXP       int        `gorm:"default:0" json:"nextLevelXp"`
	LessonsCompleted  int        `gorm:"default:0" json:"lessonsCompleted"` // 派生计数，源头是 LessonRecords
	VocabularyLearned int        `gorm:"default:0" json:"vocabularyLearned"`
	GrammarMastered   int        `gorm:"default:0" json:"grammarMastered"`
	CurrentStreak     int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak     int        `gorm:"default:0" json:"longestStreak"`
	LastPracticeDate  *time.Time `json:"lastPracticeDate"`
	ActiveLevelID     string     `gorm:"size:50" json:"activeLevelId"`
	CurrentModuleID   string     `gorm:"size:100" json:"currentModuleId"`
	CurrentLessonID   string     `gorm:"size:100" json:"currentLessonId"`
	Version           int        `gorm:"default:0" json:"-"` // 乐观锁版本号

	LessonRecords    []LessonRecord    `gorm:"foreignKey:ProgressID" json:"lessonRecords,omitempty"`
	PracticeSessions []PracticeSession `gorm:"foreignKey:ProgressID" json:"practiceSessions,omitempty"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// LessonRecord 课时进度记录：首次接触时创建，之后原地更新
// Completed 一旦置真不再回退
type LessonRecord struct {
	BaseModel
	ProgressID        uint     `gorm:"index;uniqueIndex:idx_progress_lesson;not null" json:"-"`
	LessonID          string   `gorm:"size:100;uniqueIndex:idx_progress_lesson;not null" json:"lessonId"`
	Completed         bool     `gorm:"default:false" json:"completed"`
	Score             int      `gorm:"default:0" json:"score"`
	Attempts          int      `gorm:"default:0" json:"attempts"`
	XPEarned          int      `gorm:"default:0" json:"xpEarned"`
	CompletedSections []string `gorm:"serializer:json;type:text" json:"completedSections"`
	CurrentSection    string   `gorm:"size:20" json:"currentSection"`
}

func (LessonRecord) TableName() string {
	return "lesson_records"
}

// PracticeSession 练习日志，只追加不修改
type PracticeSession struct {
	BaseModel
	ProgressID   uint      `gorm:"index;not null" json:"-"`
	UserID       uint      `gorm:"index" json:"userId"`
	PracticedAt  time.Time `gorm:"not null;index" json:"practicedAt"`
	Duration     int       `gorm:"default:0" json:"durationSeconds"`
	ActivityType string    `gorm:"size:30" json:"activityType"` // vocabulary/grammar/listening/speaking/pronunciation/review
	Score        float64   `gorm:"default:0" json:"performanceScore"`
}

func (PracticeSession) TableName() string {
	return "practice_sessions"
}
