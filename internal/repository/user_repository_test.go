package repository

import (
	"testing"
	"time"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/testutil"
)

func TestUserRepositoryCreateAndFind(t *testing.T) {
	repo := NewUserRepository(testutil.OpenTestDB(t))

	user := &model.User{
		Name:      "小明",
		Email:     "xiaoming@example.com",
		Password:  "hashed",
		Role:      model.Learner,
		LastLogin: time.Now(),
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindByEmail("xiaoming@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if found.ID != user.ID || found.Name != "小明" {
		t.Errorf("found = %+v, want created user", found)
	}
}

func TestUserRepositoryUpdateLastLogin(t *testing.T) {
	repo := NewUserRepository(testutil.OpenTestDB(t))

	user := &model.User{
		Name:      "小红",
		Email:     "xiaohong@example.com",
		Password:  "hashed",
		LastLogin: time.Now().Add(-24 * time.Hour),
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateLastLogin(user.ID); err != nil {
		t.Fatalf("update last login: %v", err)
	}

	reloaded, err := repo.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.LastLogin.After(user.LastLogin) {
		t.Errorf("LastLogin = %v, want later than %v", reloaded.LastLogin, user.LastLogin)
	}
}
