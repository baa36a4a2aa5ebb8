package service

import (
	"context"
	"testing"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/testutil"
	"lingua_learn_backend/internal/util"

	"gorm.io/gorm"
)

func newAchievementService(t *testing.T) (*AchievementService, *repository.ProgressRepository, *gorm.DB) {
	t.Helper()

	db := testutil.OpenTestDB(t)
	seedCurriculumData(t, db)

	progressRepo := repository.NewProgressRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	achievementRepo := repository.NewAchievementRepository(db, nil)
	svc := NewAchievementService(achievementRepo, progressRepo, curriculumRepo)

	if err := progressRepo.Create(&model.UserProgress{UserID: 1}); err != nil {
		t.Fatalf("create progress: %v", err)
	}

	return svc, progressRepo, db
}

func seedAchievement(t *testing.T, db *gorm.DB, a model.Achievement) uint {
	t.Helper()
	a.IsActive = true
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed achievement: %v", err)
	}
	return a.ID
}

func TestCheckAndAwardGrantsOnce(t *testing.T) {
	svc, progressRepo, db := newAchievementService(t)

	id := seedAchievement(t, db, model.Achievement{
		Title:    "初学者",
		Category: model.CategoryMilestone,
		Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 1},
		XPReward: 50,
	})

	p, _ := progressRepo.FindByUserID(1)
	p.LessonRecords = append(p.LessonRecords, model.LessonRecord{LessonID: "beginner-basics-1", Completed: true})
	p.LessonsCompleted = 1
	if err := progressRepo.Save(p); err != nil {
		t.Fatalf("save progress: %v", err)
	}

	awarded, err := svc.CheckAndAward(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckAndAward: %v", err)
	}
	if len(awarded) != 1 || awarded[0].ID != id {
		t.Fatalf("awarded = %+v, want the seeded achievement", awarded)
	}

	// 奖励经验只写权威计数
	p, _ = progressRepo.FindByUserID(1)
	if p.XPPoints != 50 {
		t.Errorf("XPPoints = %d, want 50", p.XPPoints)
	}

	// 第二轮不再发放
	awarded, err = svc.CheckAndAward(context.Background(), 1)
	if err != nil {
		t.Fatalf("second CheckAndAward: %v", err)
	}
	if len(awarded) != 0 {
		t.Errorf("second round awarded = %+v, want none", awarded)
	}

	var count int64
	db.Model(&model.UserAchievement{}).Where("user_id = ?", 1).Count(&count)
	if count != 1 {
		t.Errorf("user_achievements rows = %d, want exactly 1", count)
	}

	p, _ = progressRepo.FindByUserID(1)
	if p.XPPoints != 50 {
		t.Errorf("XPPoints = %d after rerun, want still 50", p.XPPoints)
	}
}

func TestCheckAndAwardUnmetCriteria(t *testing.T) {
	svc, _, db := newAchievementService(t)

	seedAchievement(t, db, model.Achievement{
		Title:    "百课达人",
		Category: model.CategoryCompletion,
		Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 100},
		XPReward: 500,
	})

	awarded, err := svc.CheckAndAward(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckAndAward: %v", err)
	}
	if len(awarded) != 0 {
		t.Errorf("awarded = %+v, want none", awarded)
	}
}

func TestCheckAndAwardSkipsBadCatalogEntry(t *testing.T) {
	svc, progressRepo, db := newAchievementService(t)

	// 未知条件类型的目录条目降级为未达成，不挡住整轮检查
	seedAchievement(t, db, model.Achievement{
		Title:    "第一课",
		Category: model.CategoryMilestone,
		Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 1},
		XPReward: 100,
	})
	seedAchievement(t, db, model.Achievement{
		Title:    "预留成就",
		Category: model.CategoryMilestone,
		Criteria: model.AchievementCriteria{Type: "xp_total", Threshold: 100},
	})

	p, _ := progressRepo.FindByUserID(1)
	p.LessonRecords = append(p.LessonRecords, model.LessonRecord{LessonID: "beginner-basics-1", Completed: true})
	p.LessonsCompleted = 1
	if err := progressRepo.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	awarded, err := svc.CheckAndAward(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckAndAward: %v", err)
	}
	if len(awarded) != 1 {
		t.Errorf("awarded = %d, want only the lesson achievement", len(awarded))
	}
}

func TestGetUserAchievementsHidesUnearnedSecrets(t *testing.T) {
	svc, _, db := newAchievementService(t)

	seedAchievement(t, db, model.Achievement{
		Title:    "坚持一周",
		Category: model.CategoryStreak,
		Criteria: model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 7},
	})
	secretID := seedAchievement(t, db, model.Achievement{
		Title:    "隐藏成就",
		Category: model.CategorySpecial,
		Criteria: model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 30},
		IsSecret: true,
	})

	views, err := svc.GetUserAchievements(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUserAchievements: %v", err)
	}
	for _, v := range views {
		if v.ID == secretID {
			t.Error("unearned secret achievement must stay hidden")
		}
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].Earned {
		t.Error("unearned achievement marked as earned")
	}
}

func TestGetUserAchievementsShowsEarnedSecret(t *testing.T) {
	svc, progressRepo, db := newAchievementService(t)

	secretID := seedAchievement(t, db, model.Achievement{
		Title:    "隐藏成就",
		Category: model.CategorySpecial,
		Criteria: model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 3},
		IsSecret: true,
	})

	p, _ := progressRepo.FindByUserID(1)
	p.CurrentStreak = 3
	if err := progressRepo.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.CheckAndAward(context.Background(), 1); err != nil {
		t.Fatalf("CheckAndAward: %v", err)
	}

	views, err := svc.GetUserAchievements(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUserAchievements: %v", err)
	}
	found := false
	for _, v := range views {
		if v.ID == secretID {
			found = true
			if !v.Earned || v.Progress != 100 || v.EarnedAt == nil {
				t.Errorf("earned secret view = %+v", v)
			}
		}
	}
	if !found {
		t.Error("earned secret achievement should appear in list")
	}
}

func TestGetUserAchievementsProgressEstimate(t *testing.T) {
	svc, progressRepo, db := newAchievementService(t)

	seedAchievement(t, db, model.Achievement{
		Title:    "十课小成",
		Category: model.CategoryCompletion,
		Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 10},
	})

	p, _ := progressRepo.FindByUserID(1)
	for _, id := range []string{"beginner-basics-1", "beginner-basics-2"} {
		p.LessonRecords = append(p.LessonRecords, model.LessonRecord{LessonID: id, Completed: true})
	}
	p.LessonsCompleted = 2
	if err := progressRepo.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	views, err := svc.GetUserAchievements(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUserAchievements: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].Progress != 20 {
		t.Errorf("Progress = %d, want 20", views[0].Progress)
	}
}

func TestMarkViewed(t *testing.T) {
	svc, progressRepo, db := newAchievementService(t)

	id := seedAchievement(t, db, model.Achievement{
		Title:    "初学者",
		Category: model.CategoryMilestone,
		Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 1},
	})

	p, _ := progressRepo.FindByUserID(1)
	p.LessonRecords = append(p.LessonRecords, model.LessonRecord{LessonID: "beginner-basics-1", Completed: true})
	p.LessonsCompleted = 1
	if err := progressRepo.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.CheckAndAward(context.Background(), 1); err != nil {
		t.Fatalf("CheckAndAward: %v", err)
	}

	if err := svc.MarkViewed(1, id); err != nil {
		t.Fatalf("MarkViewed: %v", err)
	}

	views, _ := svc.GetUserAchievements(context.Background(), 1)
	if !views[0].IsViewed {
		t.Error("IsViewed not persisted")
	}

	// 未获得的成就不能标记已读
	if err := svc.MarkViewed(1, id+999); err != util.ErrAchievementNotFound {
		t.Errorf("err = %v, want ErrAchievementNotFound", err)
	}
}
