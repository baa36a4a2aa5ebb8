package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/testutil"
	"lingua_learn_backend/internal/util"
)

func seedCatalogEntry(t *testing.T, repo *AchievementRepository, title string) *model.Achievement {
	t.Helper()
	a := &model.Achievement{
		Title:    title,
		Category: model.CategoryMilestone,
		Criteria: model.AchievementCriteria{Type: model.CriteriaLessonsCompleted, Threshold: 1},
		IsActive: true,
	}
	if err := repo.DB.Create(a).Error; err != nil {
		t.Fatalf("seed achievement: %v", err)
	}
	return a
}

func TestFindEarnedByUserReturnsRecords(t *testing.T) {
	repo := NewAchievementRepository(testutil.OpenTestDB(t), nil)
	first := seedCatalogEntry(t, repo, "第一课")
	second := seedCatalogEntry(t, repo, "坚持一周")

	if err := repo.CreateUserAchievement(&model.UserAchievement{
		UserID: 1, AchievementID: first.ID, EarnedAt: time.Now().Add(-time.Hour), Progress: 100,
	}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.CreateUserAchievement(&model.UserAchievement{
		UserID: 1, AchievementID: second.ID, EarnedAt: time.Now(), Progress: 100,
	}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	earned, err := repo.FindEarnedByUser(1)
	if err != nil {
		t.Fatalf("find earned: %v", err)
	}
	if len(earned) != 2 {
		t.Fatalf("earned = %d, want 2", len(earned))
	}
	// 按获得时间倒序
	if earned[0].AchievementID != second.ID {
		t.Errorf("first row = %d, want latest %d", earned[0].AchievementID, second.ID)
	}

	// 其他用户不受影响
	other, err := repo.FindEarnedByUser(2)
	if err != nil {
		t.Fatalf("find earned other: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("other user earned = %d, want 0", len(other))
	}
}

func TestCreateUserAchievementDuplicate(t *testing.T) {
	repo := NewAchievementRepository(testutil.OpenTestDB(t), nil)
	a := seedCatalogEntry(t, repo, "入门")

	ua := &model.UserAchievement{UserID: 1, AchievementID: a.ID, EarnedAt: time.Now()}
	if err := repo.CreateUserAchievement(ua); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := &model.UserAchievement{UserID: 1, AchievementID: a.ID, EarnedAt: time.Now()}
	if err := repo.CreateUserAchievement(dup); !errors.Is(err, util.ErrAlreadyEarned) {
		t.Errorf("duplicate err = %v, want ErrAlreadyEarned", err)
	}
}

func TestFindActiveSkipsDisabled(t *testing.T) {
	repo := NewAchievementRepository(testutil.OpenTestDB(t), nil)
	seedCatalogEntry(t, repo, "可见")
	disabled := seedCatalogEntry(t, repo, "下架")
	if err := repo.DB.Model(disabled).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}

	active, err := repo.FindActive(context.Background())
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(active) != 1 || active[0].Title != "可见" {
		t.Errorf("active = %+v, want only 可见", active)
	}
}
