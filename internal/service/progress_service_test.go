package service

import (
	"errors"
	"testing"
	"time"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/testutil"
	"lingua_learn_backend/internal/util"

	"gorm.io/gorm"
)

func seedCurriculumData(t *testing.T, db *gorm.DB) {
	t.Helper()

	thresholds := []model.LevelThreshold{
		{Level: 0, XPRequired: 0},
		{Level: 1, XPRequired: 100},
		{Level: 2, XPRequired: 300},
		{Level: 3, XPRequired: 600},
	}
	if err := db.Create(&thresholds).Error; err != nil {
		t.Fatalf("seed thresholds: %v", err)
	}

	levels := []model.CurriculumLevel{
		{ID: "beginner", Name: "入门", Order: 1, RequiredXP: 0},
		{ID: "intermediate", Name: "进阶", Order: 2, RequiredXP: 600},
	}
	if err := db.Create(&levels).Error; err != nil {
		t.Fatalf("seed levels: %v", err)
	}

	modules := []model.CurriculumModule{
		{ID: "beginner-basics", LevelID: "beginner", Title: "基础会话", Order: 1},
		{ID: "beginner-phrases", LevelID: "beginner", Title: "常用短语", Order: 2},
	}
	if err := db.Create(&modules).Error; err != nil {
		t.Fatalf("seed modules: %v", err)
	}

	lessons := []model.CurriculumLesson{
		{ID: "beginner-basics-1", ModuleID: "beginner-basics", Title: "问候", Order: 1, XPReward: 20},
		{ID: "beginner-basics-2", ModuleID: "beginner-basics", Title: "自我介绍", Order: 2, XPReward: 20},
		{ID: "beginner-phrases-1", ModuleID: "beginner-phrases", Title: "点餐", Order: 1, XPReward: 25},
	}
	if err := db.Create(&lessons).Error; err != nil {
		t.Fatalf("seed lessons: %v", err)
	}
}

func newProgressService(t *testing.T) (*ProgressService, *repository.ProgressRepository) {
	t.Helper()

	db := testutil.OpenTestDB(t)
	seedCurriculumData(t, db)

	progressRepo := repository.NewProgressRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	achievementRepo := repository.NewAchievementRepository(db, nil)
	achievement := NewAchievementService(achievementRepo, progressRepo, curriculumRepo)
	svc := NewProgressService(progressRepo, curriculumRepo, achievement, nil)

	if err := progressRepo.Create(&model.UserProgress{UserID: 1}); err != nil {
		t.Fatalf("create progress: %v", err)
	}

	return svc, progressRepo
}

func TestGetProgressFreshUser(t *testing.T) {
	svc, _ := newProgressService(t)

	view, err := svc.GetProgress(1)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}

	if view.XPPoints != 0 || view.LessonsCompleted != 0 {
		t.Errorf("fresh user not zeroed: %+v", view)
	}
	if len(view.Levels) != 2 {
		t.Fatalf("levels = %d, want 2", len(view.Levels))
	}
}

func TestGetProgressUnknownUser(t *testing.T) {
	svc, _ := newProgressService(t)

	_, err := svc.GetProgress(99)
	if !errors.Is(err, util.ErrProgressNotFound) {
		t.Errorf("err = %v, want ErrProgressNotFound", err)
	}
}

func TestUpdateLessonProgressFirstCompletion(t *testing.T) {
	svc, repo := newProgressService(t)

	view, err := svc.UpdateLessonProgress(1, "beginner-basics-1", &LessonProgressRequest{
		Completed: true,
		Score:     85,
	})
	if err != nil {
		t.Fatalf("UpdateLessonProgress: %v", err)
	}

	if view.LessonsCompleted != 1 {
		t.Errorf("LessonsCompleted = %d, want 1", view.LessonsCompleted)
	}
	// 未传 xpEarned 时按课时默认奖励发放
	if view.XPPoints != 20 {
		t.Errorf("XPPoints = %d, want lesson default 20", view.XPPoints)
	}

	p, _ := repo.FindByUserID(1)
	if p.LastPracticeDate == nil {
		t.Error("first completion should anchor the practice date")
	}
	if len(p.LessonRecords) != 1 {
		t.Fatalf("records = %d, want 1", len(p.LessonRecords))
	}
	rec := p.LessonRecords[0]
	if !rec.Completed || rec.Score != 85 || rec.Attempts != 1 || rec.XPEarned != 20 {
		t.Errorf("record = %+v", rec)
	}
}

func TestUpdateLessonProgressRepeatNoDoubleAward(t *testing.T) {
	svc, _ := newProgressService(t)

	if _, err := svc.UpdateLessonProgress(1, "beginner-basics-1", &LessonProgressRequest{Completed: true, Score: 70}); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	view, err := svc.UpdateLessonProgress(1, "beginner-basics-1", &LessonProgressRequest{Completed: true, Score: 95})
	if err != nil {
		t.Fatalf("repeat completion: %v", err)
	}

	if view.LessonsCompleted != 1 {
		t.Errorf("LessonsCompleted = %d, want still 1", view.LessonsCompleted)
	}
	if view.XPPoints != 20 {
		t.Errorf("XPPoints = %d, want no double award", view.XPPoints)
	}

	var lesson *LessonView
	for li := range view.Levels {
		for mi := range view.Levels[li].Modules {
			for i := range view.Levels[li].Modules[mi].Lessons {
				if view.Levels[li].Modules[mi].Lessons[i].ID == "beginner-basics-1" {
					lesson = &view.Levels[li].Modules[mi].Lessons[i]
				}
			}
		}
	}
	if lesson == nil {
		t.Fatal("lesson missing from view")
	}
	// 分数取历史最高，尝试次数累加
	if lesson.Score != 95 || lesson.Attempts != 2 {
		t.Errorf("lesson = score %d attempts %d, want 95/2", lesson.Score, lesson.Attempts)
	}
	if !lesson.Completed {
		t.Error("completion must not revert")
	}
}

func TestUpdateLessonProgressCompletionNeverReverts(t *testing.T) {
	svc, repo := newProgressService(t)

	if _, err := svc.UpdateLessonProgress(1, "beginner-basics-1", &LessonProgressRequest{Completed: true}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// 再次上报未完成，记录保持完成态
	if _, err := svc.UpdateLessonProgress(1, "beginner-basics-1", &LessonProgressRequest{Completed: false, Score: 40}); err != nil {
		t.Fatalf("report incomplete: %v", err)
	}

	p, _ := repo.FindByUserID(1)
	if !p.LessonRecords[0].Completed {
		t.Error("completed flag reverted")
	}
	if p.LessonsCompleted != 1 {
		t.Errorf("LessonsCompleted = %d, want 1", p.LessonsCompleted)
	}
}

func TestUpdateLessonProgressUnknownLesson(t *testing.T) {
	svc, _ := newProgressService(t)

	_, err := svc.UpdateLessonProgress(1, "no-such-lesson", &LessonProgressRequest{Completed: true})
	if !errors.Is(err, util.ErrLessonNotFound) {
		t.Errorf("err = %v, want ErrLessonNotFound", err)
	}
}

func TestUpdateSectionProgress(t *testing.T) {
	svc, repo := newProgressService(t)

	view, err := svc.UpdateSectionProgress(1, "beginner-basics-1", &SectionProgressRequest{
		SectionID: model.SectionVocabulary,
	})
	if err != nil {
		t.Fatalf("UpdateSectionProgress: %v", err)
	}
	if view.VocabularyLearned != 1 {
		t.Errorf("VocabularyLearned = %d, want 1", view.VocabularyLearned)
	}

	// 重复上报同一小节不再累加
	view, err = svc.UpdateSectionProgress(1, "beginner-basics-1", &SectionProgressRequest{
		SectionID: model.SectionVocabulary,
	})
	if err != nil {
		t.Fatalf("repeat section: %v", err)
	}
	if view.VocabularyLearned != 1 {
		t.Errorf("VocabularyLearned = %d after repeat, want 1", view.VocabularyLearned)
	}

	p, _ := repo.FindByUserID(1)
	rec := p.LessonRecords[0]
	if len(rec.CompletedSections) != 1 || rec.CompletedSections[0] != model.SectionVocabulary {
		t.Errorf("CompletedSections = %v", rec.CompletedSections)
	}
	// 指针指到顺序里第一个未完成的小节
	if rec.CurrentSection != model.SectionIntroduction {
		t.Errorf("CurrentSection = %q, want introduction", rec.CurrentSection)
	}
}

func TestUpdateSectionProgressAdvancesPointer(t *testing.T) {
	svc, repo := newProgressService(t)

	for _, section := range []string{model.SectionIntroduction, model.SectionVocabulary} {
		if _, err := svc.UpdateSectionProgress(1, "beginner-basics-1", &SectionProgressRequest{SectionID: section}); err != nil {
			t.Fatalf("section %s: %v", section, err)
		}
	}

	p, _ := repo.FindByUserID(1)
	if got := p.LessonRecords[0].CurrentSection; got != model.SectionGrammar {
		t.Errorf("CurrentSection = %q, want grammar", got)
	}
}

func TestUpdateSectionProgressWithTimeLogsSession(t *testing.T) {
	svc, repo := newProgressService(t)

	if _, err := svc.UpdateSectionProgress(1, "beginner-basics-1", &SectionProgressRequest{
		SectionID:        model.SectionGrammar,
		TimeSpentSeconds: 420,
	}); err != nil {
		t.Fatalf("UpdateSectionProgress: %v", err)
	}

	p, _ := repo.FindByUserID(1)
	if len(p.PracticeSessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(p.PracticeSessions))
	}
	if p.PracticeSessions[0].Duration != 420 || p.PracticeSessions[0].ActivityType != model.SectionGrammar {
		t.Errorf("session = %+v", p.PracticeSessions[0])
	}
	if p.LastPracticeDate == nil {
		t.Error("timed section should anchor the practice date")
	}
}

func TestSetCurrentLesson(t *testing.T) {
	svc, _ := newProgressService(t)

	view, err := svc.SetCurrentLesson(1, "beginner-phrases-1")
	if err != nil {
		t.Fatalf("SetCurrentLesson: %v", err)
	}

	if view.CurrentLessonID != "beginner-phrases-1" {
		t.Errorf("CurrentLessonID = %q", view.CurrentLessonID)
	}
	if view.CurrentModuleID != "beginner-phrases" {
		t.Errorf("CurrentModuleID = %q", view.CurrentModuleID)
	}
	if view.ActiveLevelID != "beginner" {
		t.Errorf("ActiveLevelID = %q", view.ActiveLevelID)
	}
}

func TestReconcileRecentReportsCounts(t *testing.T) {
	svc, repo := newProgressService(t)

	if _, err := svc.UpdateLessonProgress(1, "beginner-basics-1", &LessonProgressRequest{Completed: true}); err != nil {
		t.Fatalf("complete lesson: %v", err)
	}

	// 人为制造展示计数落后于权威计数的漂移
	p, _ := repo.FindByUserID(1)
	p.TotalExperience = 0
	if err := repo.Save(p); err != nil {
		t.Fatalf("inject drift: %v", err)
	}

	scanned, fixed := svc.ReconcileRecent(time.Unix(0, 0))
	if scanned != 1 || fixed != 1 {
		t.Errorf("scanned/fixed = %d/%d, want 1/1", scanned, fixed)
	}

	p, _ = repo.FindByUserID(1)
	if p.TotalExperience != p.XPPoints {
		t.Errorf("TotalExperience = %d, want lifted to XPPoints %d", p.TotalExperience, p.XPPoints)
	}

	// 无漂移时不再计为修复
	scanned, fixed = svc.ReconcileRecent(time.Unix(0, 0))
	if scanned != 1 || fixed != 0 {
		t.Errorf("second run scanned/fixed = %d/%d, want 1/0", scanned, fixed)
	}
}

func TestRecordPracticeSession(t *testing.T) {
	svc, repo := newProgressService(t)

	view, err := svc.RecordPracticeSession(1, &PracticeSessionRequest{
		ActivityType:    "review",
		DurationSeconds: 600,
		Score:           88,
	})
	if err != nil {
		t.Fatalf("RecordPracticeSession: %v", err)
	}

	if view.Streak.LastPracticeDate == nil {
		t.Error("practice should anchor the streak date")
	}

	p, _ := repo.FindByUserID(1)
	if len(p.PracticeSessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(p.PracticeSessions))
	}
	if p.PracticeSessions[0].ActivityType != "review" {
		t.Errorf("session = %+v", p.PracticeSessions[0])
	}
}
