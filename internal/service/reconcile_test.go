package service

import (
	"testing"

	"lingua_learn_backend/internal/model"
)

func TestReconcileRecountsLessons(t *testing.T) {
	p := &model.UserProgress{
		LessonsCompleted: 7,
		LessonRecords: []model.LessonRecord{
			{LessonID: "a", Completed: true},
			{LessonID: "b", Completed: true},
			{LessonID: "c", Completed: false},
		},
	}

	changed := Reconcile(p, thresholdTable())

	if !changed {
		t.Error("drifted counter should report a change")
	}
	if p.LessonsCompleted != 2 {
		t.Errorf("LessonsCompleted = %d, want 2", p.LessonsCompleted)
	}
}

func TestReconcileLiftsTotalExperience(t *testing.T) {
	p := &model.UserProgress{XPPoints: 500, TotalExperience: 420}

	Reconcile(p, thresholdTable())

	if p.TotalExperience != 500 {
		t.Errorf("TotalExperience = %d, want lifted to 500", p.TotalExperience)
	}
}

func TestReconcileNeverLowersXPPoints(t *testing.T) {
	// 对账只抬平 TotalExperience，绝不反向压低权威值
	p := &model.UserProgress{XPPoints: 300, TotalExperience: 350}

	Reconcile(p, thresholdTable())

	if p.XPPoints != 300 {
		t.Errorf("XPPoints = %d, want untouched 300", p.XPPoints)
	}
	if p.TotalExperience != 350 {
		t.Errorf("TotalExperience = %d, want untouched 350", p.TotalExperience)
	}
}

func TestReconcileRecomputesLevel(t *testing.T) {
	p := &model.UserProgress{XPPoints: 350, TotalExperience: 350, CurrentLevel: 0}

	changed := Reconcile(p, thresholdTable())

	if !changed {
		t.Error("stale level should report a change")
	}
	if p.CurrentLevel != 2 {
		t.Errorf("CurrentLevel = %d, want 2", p.CurrentLevel)
	}
	if p.NextLevelXP != 600 {
		t.Errorf("NextLevelXP = %d, want 600", p.NextLevelXP)
	}
}

func TestReconcileCleanStateNoChange(t *testing.T) {
	p := &model.UserProgress{
		XPPoints:        150,
		TotalExperience: 150,
		LessonRecords: []model.LessonRecord{
			{LessonID: "a", Completed: true},
		},
		LessonsCompleted: 1,
	}
	ApplyLeveling(p, thresholdTable())

	if Reconcile(p, thresholdTable()) {
		t.Error("consistent state must not report a change")
	}
}
