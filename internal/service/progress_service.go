package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/logger"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProgressService 学习进度核心服务。
// 所有写操作走 读取-修改-乐观锁保存 的流程，版本冲突原样抛给调用方，
// 服务层不做内部重试。
type ProgressService struct {
	ProgressRepo   *repository.ProgressRepository
	CurriculumRepo *repository.CurriculumRepository
	Achievement    *AchievementService
	Storage        *StorageService
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	curriculumRepo *repository.CurriculumRepository,
	achievement *AchievementService,
	storage *StorageService,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:   progressRepo,
		CurriculumRepo: curriculumRepo,
		Achievement:    achievement,
		Storage:        storage,
	}
}

// LessonProgressRequest 课时进度上报
type LessonProgressRequest struct {
	Completed          bool   `json:"completed"`
	Score              int    `json:"score" binding:"min=0,max=100"`
	XPEarned           int    `json:"xpEarned" binding:"min=0"`
	CompletedSectionID string `json:"completedSectionId"`
}

// SectionProgressRequest 小节完成上报
type SectionProgressRequest struct {
	SectionID        string `json:"sectionId" binding:"required,oneof=introduction vocabulary grammar practice"`
	TimeSpentSeconds int    `json:"timeSpentSeconds" binding:"min=0"`
}

// PracticeSessionRequest 课时体系之外的自由练习上报
type PracticeSessionRequest struct {
	ActivityType    string  `json:"activityType" binding:"required"`
	DurationSeconds int     `json:"durationSeconds" binding:"min=0"`
	Score           float64 `json:"score" binding:"min=0,max=100"`
}

// GetProgress 读取进度视图。读取时先对账修复派生字段的漂移，
// 有修正则尽力回写；回写撞上版本冲突不影响本次读取。
func (s *ProgressService) GetProgress(userID uint) (*ProgressView, error) {
	p, err := s.ProgressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.CurriculumRepo.GetThresholds()
	if err != nil {
		return nil, err
	}

	if Reconcile(p, thresholds) {
		if err := s.ProgressRepo.Save(p); err != nil {
			logger.L().Warn("进度对账回写失败",
				zap.Uint("userId", userID),
				zap.Error(err))
		}
	}

	levels, err := s.CurriculumRepo.GetLevels()
	if err != nil {
		return nil, err
	}

	return BuildProgressView(p, levels), nil
}

// UpdateLessonProgress 上报课时进度。首次完成才计入完成数、发经验、
// 记连续学习；重复完成只更新分数和尝试次数，不重复发奖。
func (s *ProgressService) UpdateLessonProgress(userID uint, lessonID string, req *LessonProgressRequest) (*ProgressView, error) {
	lesson, err := s.CurriculumRepo.FindLessonByID(lessonID)
	if err != nil {
		return nil, err
	}

	p, err := s.ProgressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.CurriculumRepo.GetThresholds()
	if err != nil {
		return nil, err
	}

	rec := s.findOrCreateRecord(p, lessonID)
	rec.Attempts++
	if req.Score > rec.Score {
		rec.Score = req.Score
	}
	if req.CompletedSectionID != "" {
		if !validSection(req.CompletedSectionID) {
			return nil, util.ErrInvalidSection
		}
		markSectionDone(rec, req.CompletedSectionID, p)
	}

	firstCompletion := req.Completed && !rec.Completed
	if firstCompletion {
		rec.Completed = true
		p.LessonsCompleted++

		xp := req.XPEarned
		if xp == 0 {
			xp = lesson.XPReward
		}
		rec.XPEarned = xp
		AddXP(p, xp, thresholds)
		UpdateStreak(p, time.Now(), thresholds)

		s.advancePointers(p, lesson)
	}

	if err := s.ProgressRepo.Save(p); err != nil {
		return nil, err
	}

	if firstCompletion {
		s.checkAchievements(userID)
	}

	return s.GetProgress(userID)
}

// UpdateSectionProgress 标记课时内的小节完成并推进当前小节指针。
// 词汇/语法小节首次完成时累加对应技能计数；
// 上报了学习时长的记入练习日志并更新连续学习。
func (s *ProgressService) UpdateSectionProgress(userID uint, lessonID string, req *SectionProgressRequest) (*ProgressView, error) {
	if _, err := s.CurriculumRepo.FindLessonByID(lessonID); err != nil {
		return nil, err
	}

	p, err := s.ProgressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.CurriculumRepo.GetThresholds()
	if err != nil {
		return nil, err
	}

	rec := s.findOrCreateRecord(p, lessonID)
	markSectionDone(rec, req.SectionID, p)

	if req.TimeSpentSeconds > 0 {
		p.PracticeSessions = append(p.PracticeSessions, model.PracticeSession{
			UserID:       userID,
			PracticedAt:  time.Now(),
			Duration:     req.TimeSpentSeconds,
			ActivityType: req.SectionID,
		})
		UpdateStreak(p, time.Now(), thresholds)
	}

	if err := s.ProgressRepo.Save(p); err != nil {
		return nil, err
	}

	s.checkAchievements(userID)

	return s.GetProgress(userID)
}

// SetCurrentLesson 切换当前学习位置，三个指针一起更新保持一致
func (s *ProgressService) SetCurrentLesson(userID uint, lessonID string) (*ProgressView, error) {
	lesson, err := s.CurriculumRepo.FindLessonByID(lessonID)
	if err != nil {
		return nil, err
	}
	mod, err := s.CurriculumRepo.FindModuleByID(lesson.ModuleID)
	if err != nil {
		return nil, err
	}

	p, err := s.ProgressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	p.CurrentLessonID = lesson.ID
	p.CurrentModuleID = mod.ID
	p.ActiveLevelID = mod.LevelID

	// 首次打开的课时顺手建档，后续进度上报可以直接原地更新
	s.findOrCreateRecord(p, lessonID)

	if err := s.ProgressRepo.Save(p); err != nil {
		return nil, err
	}

	s.checkAchievements(userID)

	return s.GetProgress(userID)
}

// RecordPracticeSession 记录一次自由练习并更新连续学习
func (s *ProgressService) RecordPracticeSession(userID uint, req *PracticeSessionRequest) (*ProgressView, error) {
	p, err := s.ProgressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.CurriculumRepo.GetThresholds()
	if err != nil {
		return nil, err
	}

	p.PracticeSessions = append(p.PracticeSessions, model.PracticeSession{
		UserID:       userID,
		PracticedAt:  time.Now(),
		Duration:     req.DurationSeconds,
		ActivityType: req.ActivityType,
		Score:        req.Score,
	})
	UpdateStreak(p, time.Now(), thresholds)

	if err := s.ProgressRepo.Save(p); err != nil {
		return nil, err
	}

	s.checkAchievements(userID)

	return s.GetProgress(userID)
}

// PronunciationResult 发音练习提交结果
type PronunciationResult struct {
	AudioURL        string  `json:"audioUrl"`
	DurationSeconds float64 `json:"durationSeconds"`
	Score           float64 `json:"score"`
}

// SubmitPronunciation 保存发音录音并记为一次发音练习。
// 准确率由客户端评测后随文件一起上报。
func (s *ProgressService) SubmitPronunciation(ctx context.Context, userID uint, file *multipart.FileHeader, score float64) (*PronunciationResult, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAudioExt(ext) {
		return nil, fmt.Errorf("不支持的录音格式: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	filename := fmt.Sprintf("pronunciation/%d/%s%s", userID, uuid.New().String(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	url, err := s.Storage.Upload(ctx, filename, src, file.Size, contentType)
	if err != nil {
		return nil, err
	}

	duration := 0.0
	if local, ok := s.Storage.Provider.(*LocalStorageProvider); ok {
		if info, err := util.GetAudioInfo(filepath.Join(local.Config.LocalPath, filename)); err == nil {
			duration = info.Duration
		}
	}

	p, err := s.ProgressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	thresholds, err := s.CurriculumRepo.GetThresholds()
	if err != nil {
		return nil, err
	}

	p.PracticeSessions = append(p.PracticeSessions, model.PracticeSession{
		UserID:       userID,
		PracticedAt:  time.Now(),
		Duration:     int(duration),
		ActivityType: "pronunciation",
		Score:        score,
	})
	UpdateStreak(p, time.Now(), thresholds)

	if err := s.ProgressRepo.Save(p); err != nil {
		return nil, err
	}

	s.checkAchievements(userID)

	return &PronunciationResult{
		AudioURL:        url,
		DurationSeconds: duration,
		Score:           score,
	}, nil
}

// ReconcileRecent 后台对账：扫描最近活跃的用户，修复派生字段漂移，
// 返回扫描人数和修复人数
func (s *ProgressService) ReconcileRecent(since time.Time) (scanned, fixed int) {
	ids, err := s.ProgressRepo.FindActiveUserIDs(since)
	if err != nil {
		logger.L().Error("对账任务查询活跃用户失败", zap.Error(err))
		return 0, 0
	}

	thresholds, err := s.CurriculumRepo.GetThresholds()
	if err != nil {
		logger.L().Error("对账任务加载等级表失败", zap.Error(err))
		return 0, 0
	}

	for _, userID := range ids {
		p, err := s.ProgressRepo.FindByUserID(userID)
		if err != nil {
			continue
		}
		if Reconcile(p, thresholds) {
			if err := s.ProgressRepo.Save(p); err == nil {
				fixed++
			}
		}
	}

	if fixed > 0 {
		logger.L().Info("后台对账完成",
			zap.Int("scanned", len(ids)),
			zap.Int("fixed", fixed))
	}
	return len(ids), fixed
}

// findOrCreateRecord 定位课时记录，没有则就地追加一条新记录
func (s *ProgressService) findOrCreateRecord(p *model.UserProgress, lessonID string) *model.LessonRecord {
	for i := range p.LessonRecords {
		if p.LessonRecords[i].LessonID == lessonID {
			return &p.LessonRecords[i]
		}
	}
	p.LessonRecords = append(p.LessonRecords, model.LessonRecord{
		LessonID:       lessonID,
		CurrentSection: model.SectionIntroduction,
	})
	return &p.LessonRecords[len(p.LessonRecords)-1]
}

// markSectionDone 去重记入小节完成，推进当前小节指针，
// 首次完成词汇/语法小节时累加对应技能计数
func markSectionDone(rec *model.LessonRecord, sectionID string, p *model.UserProgress) {
	for _, done := range rec.CompletedSections {
		if done == sectionID {
			return
		}
	}
	rec.CompletedSections = append(rec.CompletedSections, sectionID)

	switch sectionID {
	case model.SectionVocabulary:
		p.VocabularyLearned++
	case model.SectionGrammar:
		p.GrammarMastered++
	}

	// 当前小节指到顺序中第一个还没完成的
	done := make(map[string]bool, len(rec.CompletedSections))
	for _, s := range rec.CompletedSections {
		done[s] = true
	}
	rec.CurrentSection = ""
	for _, s := range model.SectionOrder {
		if !done[s] {
			rec.CurrentSection = s
			break
		}
	}
}

// advancePointers 完成课时后把当前位置推进到所在模块
func (s *ProgressService) advancePointers(p *model.UserProgress, lesson *model.CurriculumLesson) {
	p.CurrentLessonID = lesson.ID
	if mod, err := s.CurriculumRepo.FindModuleByID(lesson.ModuleID); err == nil {
		p.CurrentModuleID = mod.ID
		p.ActiveLevelID = mod.LevelID
	}
}

// checkAchievements 进度变更后尽力触发一次成就判定，失败只记日志
func (s *ProgressService) checkAchievements(userID uint) {
	if s.Achievement == nil {
		return
	}
	if _, err := s.Achievement.CheckAndAward(context.Background(), userID); err != nil &&
		!errors.Is(err, util.ErrVersionConflict) {
		logger.L().Warn("成就判定失败",
			zap.Uint("userId", userID),
			zap.Error(err))
	}
}

func validSection(sectionID string) bool {
	for _, s := range model.SectionOrder {
		if s == sectionID {
			return true
		}
	}
	return false
}

func allowedAudioExt(ext string) bool {
	for _, allowed := range util.AllowedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
