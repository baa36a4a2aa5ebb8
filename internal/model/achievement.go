package model

import (
	"time"
)

type AchievementCategory string

const (
	CategoryStreak     AchievementCategory = "streak"
	CategorySkill      AchievementCategory = "skill"
	CategoryCompletion AchievementCategory = "completion"
	CategoryMilestone  AchievementCategory = "milestone"
	CategorySpecial    AchievementCategory = "special"
)

// CriteriaType 成就判定条件类型（封闭集合，未知类型一律视为未达成）
type CriteriaType string

const (
	CriteriaStreakDays            CriteriaType = "streak_days"
	CriteriaLessonsCompleted      CriteriaType = "lessons_completed"
	CriteriaSpecificLesson        CriteriaType = "specific_lesson"
	CriteriaModuleCompleted       CriteriaType = "module_completed"
	CriteriaLevelCompleted        CriteriaType = "level_completed"
	CriteriaCurriculumCompleted   CriteriaType = "curriculum_completed"
	CriteriaVocabularyLearned     CriteriaType = "vocabulary_learned"
	CriteriaGrammarMastered       CriteriaType = "grammar_mastered"
	CriteriaPronunciationAccuracy CriteriaType = "pronunciation_accuracy"
	CriteriaPracticeTime          CriteriaType = "practice_time"
	CriteriaWeekendPractice       CriteriaType = "weekend_practice"
	CriteriaCustom                CriteriaType = "custom"
)

// AchievementCriteria 成就判定条件，按类型携带各自的参数
// 可选参数缺失时只是关闭对应的判定分支，不报错
type AchievementCriteria struct {
	Type          CriteriaType `json:"type"`
	Threshold     int          `json:"threshold,omitempty"`
	TargetID      string       `json:"targetId,omitempty"`      // specific_lesson / module_completed / level_completed
	ExerciseCount int          `json:"exerciseCount,omitempty"` // pronunciation_accuracy
	BeforeHour    *int         `json:"beforeHour,omitempty"`    // practice_time
	AfterHour     *int         `json:"afterHour,omitempty"`     // practice_time
}

// Achievement 成就目录条目，部署时播种，运行期间只读
// swagger:model Achievement
type Achievement struct {
	BaseModel
	Title       string              `gorm:"size:100;not null" json:"title"`
	Description string              `gorm:"size:255" json:"description"`
	Icon        string              `gorm:"size:255" json:"icon"`
	Category    AchievementCategory `gorm:"size:20;index" json:"category"`
	Criteria    AchievementCriteria `gorm:"serializer:json;type:text" json:"criteria"`
	XPReward    int                 `gorm:"default:0" json:"xpReward"`
	IsSecret    bool                `gorm:"default:false" json:"isSecret"`
	IsActive    bool                `gorm:"default:true;index" json:"isActive"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户与成就的关联，(user, achievement) 唯一，
// 发放后只允许翻转 IsViewed
type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievementId"`
	EarnedAt      time.Time `gorm:"not null" json:"earnedAt"`
	IsViewed      bool      `gorm:"default:false" json:"isViewed"`
	Progress      int       `gorm:"default:100" json:"progress"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
