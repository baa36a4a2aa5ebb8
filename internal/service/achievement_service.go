package service

import (
	"context"
	"errors"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/logger"
	"lingua_learn_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// AchievementService 成就判定与发放。
// 发放是恰好一次语义：先查已获得集合跳过，落库再由唯一索引兜底，
// 两道防线都过了才算新发放。
type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	ProgressRepo    *repository.ProgressRepository
	CurriculumRepo  *repository.CurriculumRepository
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	progressRepo *repository.ProgressRepository,
	curriculumRepo *repository.CurriculumRepository,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
		CurriculumRepo:  curriculumRepo,
	}
}

// AwardedAchievement 本轮新发放的成就
type AwardedAchievement struct {
	ID          uint                      `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Icon        string                    `json:"icon"`
	Category    model.AchievementCategory `json:"category"`
	XPReward    int                       `json:"xpReward"`
	EarnedAt    time.Time                 `json:"earnedAt"`
}

// AchievementView 成就列表条目：已获得的带获得时间，
// 未获得的带进度估算；未获得的隐藏成就不出现在列表里
type AchievementView struct {
	ID          uint                      `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Icon        string                    `json:"icon"`
	Category    model.AchievementCategory `json:"category"`
	XPReward    int                       `json:"xpReward"`
	Earned      bool                      `json:"earned"`
	EarnedAt    *time.Time                `json:"earnedAt,omitempty"`
	IsViewed    bool                      `json:"isViewed"`
	Progress    int                       `json:"progress"` // 0-100
}

// CheckAndAward 对用户跑一轮完整的成就判定，返回本轮新发放的成就。
// 判定基于进入本轮时的统计快照，本轮发的奖励经验不参与本轮判定，
// 由经验触发的连锁成就留到下一轮。
func (s *AchievementService) CheckAndAward(ctx context.Context, userID uint) ([]AwardedAchievement, error) {
	p, err := s.ProgressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	levels, err := s.CurriculumRepo.GetLevels()
	if err != nil {
		return nil, err
	}
	thresholds, err := s.CurriculumRepo.GetThresholds()
	if err != nil {
		return nil, err
	}

	catalog, err := s.AchievementRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.AchievementRepo.EarnedIDSet(userID)
	if err != nil {
		return nil, err
	}

	stats := BuildUserStats(p, levels, time.Now())

	var awarded []AwardedAchievement
	rewardXP := 0

	for i := range catalog {
		a := &catalog[i]
		if earned[a.ID] {
			continue
		}
		if !EvaluateCriteria(a.Criteria, stats) {
			continue
		}

		ua := &model.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			EarnedAt:      time.Now(),
			Progress:      100,
		}
		if err := s.AchievementRepo.CreateUserAchievement(ua); err != nil {
			if errors.Is(err, util.ErrAlreadyEarned) {
				// 并发的另一轮已经发过了
				continue
			}
			return awarded, err
		}

		rewardXP += a.XPReward
		monitoring.AchievementsAwarded.WithLabelValues(string(a.Category)).Inc()
		logger.L().Info("成就发放",
			zap.Uint("userId", userID),
			zap.Uint("achievementId", a.ID),
			zap.String("title", a.Title))

		awarded = append(awarded, AwardedAchievement{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Category:    a.Category,
			XPReward:    a.XPReward,
			EarnedAt:    ua.EarnedAt,
		})
	}

	if rewardXP > 0 {
		if err := s.grantRewardXP(p, rewardXP, thresholds); err != nil {
			return awarded, err
		}
	}

	return awarded, nil
}

// grantRewardXP 把本轮累计的奖励经验写回进度。成就记录已落库，
// 撞上版本冲突时重读一次再写，避免奖励经验丢失。
func (s *AchievementService) grantRewardXP(p *model.UserProgress, amount int, thresholds []model.LevelThreshold) error {
	AddXP(p, amount, thresholds)
	err := s.ProgressRepo.Save(p)
	if !errors.Is(err, util.ErrVersionConflict) {
		return err
	}

	fresh, err := s.ProgressRepo.FindByUserID(p.UserID)
	if err != nil {
		return err
	}
	AddXP(fresh, amount, thresholds)
	return s.ProgressRepo.Save(fresh)
}

// GetUserAchievements 用户视角的成就列表
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID uint) ([]AchievementView, error) {
	catalog, err := s.AchievementRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	earnedRecords, err := s.AchievementRepo.FindEarnedByUser(userID)
	if err != nil {
		return nil, err
	}

	earnedByID := make(map[uint]*model.UserAchievement, len(earnedRecords))
	for i := range earnedRecords {
		earnedByID[earnedRecords[i].AchievementID] = &earnedRecords[i]
	}

	// 进度估算要用到和判定同一套统计快照
	var stats *UserStats
	if p, err := s.ProgressRepo.FindByUserID(userID); err == nil {
		if levels, err := s.CurriculumRepo.GetLevels(); err == nil {
			stats = BuildUserStats(p, levels, time.Now())
		}
	}

	views := make([]AchievementView, 0, len(catalog))
	for i := range catalog {
		a := &catalog[i]
		rec, ok := earnedByID[a.ID]
		if !ok && a.IsSecret {
			continue
		}

		view := AchievementView{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Category:    a.Category,
			XPReward:    a.XPReward,
		}
		if ok {
			view.Earned = true
			view.EarnedAt = &rec.EarnedAt
			view.IsViewed = rec.IsViewed
			view.Progress = 100
		} else if stats != nil {
			view.Progress = CriteriaProgress(a.Criteria, stats)
		}
		views = append(views, view)
	}

	return views, nil
}

// MarkViewed 标记成就通知已读
func (s *AchievementService) MarkViewed(userID, achievementID uint) error {
	return s.AchievementRepo.MarkViewed(userID, achievementID)
}

// GetLeaderboard 按权威经验值取排行榜
func (s *AchievementService) GetLeaderboard(limit int) ([]repository.LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.ProgressRepo.TopByXP(limit)
}
