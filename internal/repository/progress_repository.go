package repository

import (
	"errors"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// ProgressRepository 用户进度持久化。
// 进度主记录带乐观锁版本号：并发的读-改-写相互冲突时，后写的一方
// 拿到 ErrVersionConflict，由调用方重试，避免静默丢更新。
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindByUserID 加载用户进度（含课时记录与练习日志），进度记录绝不跨请求缓存
func (r *ProgressRepository) FindByUserID(userID uint) (*model.UserProgress, error) {
	var p model.UserProgress
	err := r.DB.
		Preload("LessonRecords").
		Preload("PracticeSessions").
		Where("user_id = ?", userID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create 注册时创建初始进度记录，派生字段均为零值
func (r *ProgressRepository) Create(p *model.UserProgress) error {
	return r.DB.Create(p).Error
}

// Save 以乐观锁保存进度主记录，并级联保存课时记录与新增的练习日志。
// 版本号不匹配说明记录已被并发修改，返回 ErrVersionConflict。
func (r *ProgressRepository) Save(p *model.UserProgress) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.UserProgress{}).
			Where("id = ? AND version = ?", p.ID, p.Version).
			Updates(map[string]interface{}{
				"total_experience":   p.TotalExperience,
				"xp_points":          p.XPPoints,
				"current_level":      p.CurrentLevel,
				"level_progress":     p.LevelProgress,
				"next_level_xp":      p.NextLevelXP,
				"lessons_completed":  p.LessonsCompleted,
				"vocabulary_learned": p.VocabularyLearned,
				"grammar_mastered":   p.GrammarMastered,
				"current_streak":     p.CurrentStreak,
				"longest_streak":     p.LongestStreak,
				"last_practice_date": p.LastPracticeDate,
				"active_level_id":    p.ActiveLevelID,
				"current_module_id":  p.CurrentModuleID,
				"current_lesson_id":  p.CurrentLessonID,
				"version":            p.Version + 1,
				"updated_at":         time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrVersionConflict
		}
		p.Version++

		// 课时记录：首次接触创建，之后原地更新
		for i := range p.LessonRecords {
			rec := &p.LessonRecords[i]
			rec.ProgressID = p.ID
			if err := tx.Save(rec).Error; err != nil {
				return err
			}
		}

		// 练习日志只追加，已落库的不再改写
		for i := range p.PracticeSessions {
			session := &p.PracticeSessions[i]
			if session.ID != 0 {
				continue
			}
			session.ProgressID = p.ID
			if err := tx.Create(session).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindActiveUserIDs 最近有学习记录的用户，供后台对账任务扫描
func (r *ProgressRepository) FindActiveUserIDs(since time.Time) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.UserProgress{}).
		Where("updated_at >= ?", since).
		Pluck("user_id", &ids).Error
	return ids, err
}

// LeaderboardRow 排行榜查询结果
type LeaderboardRow struct {
	UserID       uint   `json:"userId"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	XPPoints     int    `json:"xpPoints"`
	CurrentLevel int    `json:"currentLevel"`
}

// TopByXP 按权威经验值取排行榜
func (r *ProgressRepository) TopByXP(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Model(&model.UserProgress{}).
		Select("user_progress.user_id, users.name, users.avatar, user_progress.xp_points, user_progress.current_level").
		Joins("JOIN users ON users.id = user_progress.user_id").
		Order("user_progress.xp_points DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
