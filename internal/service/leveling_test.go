package service

import (
	"testing"

	"lingua_learn_backend/internal/model"
)

func thresholdTable() []model.LevelThreshold {
	return []model.LevelThreshold{
		{Level: 0, XPRequired: 0},
		{Level: 1, XPRequired: 100},
		{Level: 2, XPRequired: 300},
		{Level: 3, XPRequired: 600},
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		name         string
		xp           int
		wantLevel    int
		wantProgress int
		wantNextXP   int
	}{
		{"zero xp", 0, 0, 0, 100},
		{"mid first band", 150, 1, 25, 300},
		{"exactly on threshold", 300, 2, 0, 600},
		{"just below threshold", 299, 1, 99, 300},
		{"max level", 600, 3, 100, 0},
		{"beyond max level", 9999, 3, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, progress, nextXP := LevelForXP(tt.xp, thresholdTable())
			if level != tt.wantLevel || progress != tt.wantProgress || nextXP != tt.wantNextXP {
				t.Errorf("LevelForXP(%d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.xp, level, progress, nextXP, tt.wantLevel, tt.wantProgress, tt.wantNextXP)
			}
		})
	}
}

func TestLevelForXPEmptyTable(t *testing.T) {
	level, progress, nextXP := LevelForXP(500, nil)
	if level != 1 || progress != 0 || nextXP != 0 {
		t.Errorf("got (%d, %d, %d), want (1, 0, 0)", level, progress, nextXP)
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	thresholds := thresholdTable()
	prevLevel := -1
	for xp := 0; xp <= 700; xp += 10 {
		level, progress, _ := LevelForXP(xp, thresholds)
		if level < prevLevel {
			t.Fatalf("level dropped from %d to %d at xp=%d", prevLevel, level, xp)
		}
		if progress < 0 || progress > 100 {
			t.Fatalf("progress %d out of range at xp=%d", progress, xp)
		}
		prevLevel = level
	}
}

func TestAddXP(t *testing.T) {
	p := &model.UserProgress{}
	AddXP(p, 150, thresholdTable())

	if p.XPPoints != 150 || p.TotalExperience != 150 {
		t.Errorf("counters = (%d, %d), want both 150", p.XPPoints, p.TotalExperience)
	}
	if p.CurrentLevel != 1 {
		t.Errorf("CurrentLevel = %d, want 1", p.CurrentLevel)
	}
	if p.LevelProgress != 25 {
		t.Errorf("LevelProgress = %d, want 25", p.LevelProgress)
	}
	if p.NextLevelXP != 300 {
		t.Errorf("NextLevelXP = %d, want 300", p.NextLevelXP)
	}
}

func TestAddXPIgnoresNonPositive(t *testing.T) {
	p := &model.UserProgress{XPPoints: 50, TotalExperience: 50}
	AddXP(p, 0, thresholdTable())
	AddXP(p, -10, thresholdTable())

	if p.XPPoints != 50 || p.TotalExperience != 50 {
		t.Errorf("counters changed: (%d, %d)", p.XPPoints, p.TotalExperience)
	}
}

func TestAddXPKeepsCountersInSync(t *testing.T) {
	p := &model.UserProgress{}
	for i := 0; i < 20; i++ {
		AddXP(p, 35, thresholdTable())
		if p.XPPoints != p.TotalExperience {
			t.Fatalf("counters drifted: xp=%d total=%d", p.XPPoints, p.TotalExperience)
		}
	}
}
