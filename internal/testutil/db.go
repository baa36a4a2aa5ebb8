package testutil

import (
	"lingua_learn_backend/internal/model"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB 打开内存数据库并建好全部表，用完随测试自动丢弃
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
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
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}
