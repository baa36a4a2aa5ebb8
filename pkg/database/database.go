package database

import (
	"fmt"
	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.UserProgress{},
		&model.LessonRecord{},
		&model.PracticeSession{},
		&model.CurriculumLevel{},
		&model.CurriculumModule{},
		&model.CurriculumLesson{},
		&model.LevelThreshold{},
		&model.Achievement{},
		&model.UserAchievement{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedLevelThresholds(db)
	seedCurriculum(db)
	seedAchievements(db)

	return db, nil
}

// seedLevelThresholds 默认等级表（累计经验门槛）
func seedLevelThresholds(db *gorm.DB) {
	var count int64
	db.Model(&model.LevelThreshold{}).Count(&count)
	if count > 0 {
		return
	}

	thresholds := []model.LevelThreshold{
		{Level: 0, XPRequired: 0},
		{Level: 1, XPRequired: 100},
		{Level: 2, XPRequired: 300},
		{Level: 3, XPRequired: 600},
		{Level: 4, XPRequired: 1000},
		{Level: 5, XPRequired: 1500},
		{Level: 6, XPRequired: 2100},
		{Level: 7, XPRequired: 2800},
		{Level: 8, XPRequired: 3600},
		{Level: 9, XPRequired: 4500},
	}
	for _, t := range thresholds {
		db.Create(&t)
	}
}

// seedCurriculum 默认课程目录（级别→模块→课时）
// 模块与课时 ID 采用 "级别-模块-序号" 命名空间，成就判定依赖该约定
func seedCurriculum(db *gorm.DB) {
	var count int64
	db.Model(&model.CurriculumLevel{}).Count(&count)
	if count > 0 {
		return
	}

	levels := []model.CurriculumLevel{
		{
			ID: "beginner", Name: "入门", Order: 1, RequiredXP: 0,
			Modules: []model.CurriculumModule{
				{
					ID: "beginner-basics", LevelID: "beginner", Title: "基础会话", Order: 1,
					Lessons: []model.CurriculumLesson{
						{ID: "beginner-basics-1", ModuleID: "beginner-basics", Title: "问候与自我介绍", Order: 1, XPReward: 10},
						{ID: "beginner-basics-2", ModuleID: "beginner-basics", Title: "数字与时间", Order: 2, XPReward: 10},
						{ID: "beginner-basics-3", ModuleID: "beginner-basics", Title: "日常物品", Order: 3, XPReward: 15},
					},
				},
				{
					ID: "beginner-phrases", LevelID: "beginner", Title: "常用短语", Order: 2,
					Lessons: []model.CurriculumLesson{
						{ID: "beginner-phrases-1", ModuleID: "beginner-phrases", Title: "购物用语", Order: 1, XPReward: 15},
						{ID: "beginner-phrases-2", ModuleID: "beginner-phrases", Title: "点餐用语", Order: 2, XPReward: 15},
						{ID: "beginner-phrases-3", ModuleID: "beginner-phrases", Title: "问路与指路", Order: 3, XPReward: 20},
					},
				},
			},
		},
		{
			ID: "intermediate", Name: "进阶", Order: 2, RequiredXP: 600,
			Modules: []model.CurriculumModule{
				{
					ID: "intermediate-conversation", LevelID: "intermediate", Title: "情景对话", Order: 1,
					Lessons: []model.CurriculumLesson{
						{ID: "intermediate-conversation-1", ModuleID: "intermediate-conversation", Title: "电话沟通", Order: 1, XPReward: 20},
						{ID: "intermediate-conversation-2", ModuleID: "intermediate-conversation", Title: "面试表达", Order: 2, XPReward: 20},
						{ID: "intermediate-conversation-3", ModuleID: "intermediate-conversation", Title: "旅行场景", Order: 3, XPReward: 25},
					},
				},
				{
					ID: "intermediate-grammar", LevelID: "intermediate", Title: "语法进阶", Order: 2,
					Lessons: []model.CurriculumLesson{
						{ID: "intermediate-grammar-1", ModuleID: "intermediate-grammar", Title: "时态综合", Order: 1, XPReward: 25},
						{ID: "intermediate-grammar-2", ModuleID: "intermediate-grammar", Title: "从句用法", Order: 2, XPReward: 25},
						{ID: "intermediate-grammar-3", ModuleID: "intermediate-grammar", Title: "虚拟语气", Order: 3, XPReward: 30},
					},
				},
			},
		},
	}

	for _, level := range levels {
		db.Create(&level)
	}
}

// seedAchievements 默认成就目录，覆盖全部条件类型
func seedAchievements(db *gorm.DB) {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count > 0 {
		return
	}

	intPtr := func(v int) *int { return &v }

	achievements := []model.Achievement{
		{Title: "三日之约", Description: "连续学习3天", Category: model.CategoryStreak,
			Criteria: model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 3}, XPReward: 30},
		{Title: "七日连胜", Description: "连续学习7天", Category: model.CategoryStreak,
			Criteria: model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 7}, XPReward: 70},
		{Title: "月度坚持", Description: "连续学习30天", Category: model.CategoryStreak,
			Criteria: model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 30}, XPReward: 300},
		{Title: "第一课", Description: "完成第一个课时", Category: model.CategoryMilestone,
			Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 1}, XPReward: 10},
		{Title: "小有所成", Description: "累计完成10个课时", Category: model.CategoryMilestone,
			Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 10}, XPReward: 50},
		{Title: "破冰者", Description: "完成问候与自我介绍", Category: model.CategoryMilestone,
			Criteria: model.AchievementCriteria{Type: model.CriteriaSpecificLesson, TargetID: "beginner-basics-1"}, XPReward: 15},
		{Title: "基础扎实", Description: "完成基础会话模块", Category: model.CategoryCompletion,
			Criteria: model.AchievementCriteria{Type: model.CriteriaModuleCompleted, TargetID: "beginner-basics"}, XPReward: 40},
		{Title: "入门毕业", Description: "完成入门级别全部模块", Category: model.CategoryCompletion,
			Criteria: model.AchievementCriteria{Type: model.CriteriaLevelCompleted, TargetID: "beginner"}, XPReward: 100},
		{Title: "全部通关", Description: "完成课程目录下所有模块", Category: model.CategoryCompletion,
			Criteria: model.AchievementCriteria{Type: model.CriteriaCurriculumCompleted}, XPReward: 500},
		{Title: "词汇新秀", Description: "掌握50个词汇小节", Category: model.CategorySkill,
			Criteria: model.AchievementCriteria{Type: model.CriteriaVocabularyLearned, Threshold: 50}, XPReward: 40},
		{Title: "语法达人", Description: "掌握30个语法小节", Category: model.CategorySkill,
			Criteria: model.AchievementCriteria{Type: model.CriteriaGrammarMastered, Threshold: 30}, XPReward: 40},
		{Title: "字正腔圆", Description: "10次发音练习准确率达到80分", Category: model.CategorySkill,
			Criteria: model.AchievementCriteria{Type: model.CriteriaPronunciationAccuracy, Threshold: 80, ExerciseCount: 10}, XPReward: 60},
		{Title: "早起鸟", Description: "在清晨7点前练习", Category: model.CategorySpecial, IsSecret: true,
			Criteria: model.AchievementCriteria{Type: model.CriteriaPracticeTime, BeforeHour: intPtr(7)}, XPReward: 20},
		{Title: "夜猫子", Description: "在深夜23点后练习", Category: model.CategorySpecial, IsSecret: true,
			Criteria: model.AchievementCriteria{Type: model.CriteriaPracticeTime, AfterHour: intPtr(23)}, XPReward: 20},
		{Title: "周末战士", Description: "周六和周日都有练习记录", Category: model.CategorySpecial,
			Criteria: model.AchievementCriteria{Type: model.CriteriaWeekendPractice}, XPReward: 30},
	}

	for _, a := range achievements {
		a.IsActive = true
		db.Create(&a)
	}
}
