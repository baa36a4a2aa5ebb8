package repository

import (
	"context"
	"encoding/json"
	"errors"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/util"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	achievementCatalogKey = "achievement:catalog:active"
	achievementCatalogTTL = 10 * time.Minute
)

// AchievementRepository 成就目录与用户获得记录。
// Redis 为可选依赖，为 nil 时目录查询直接走数据库。
type AchievementRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewAchievementRepository(db *gorm.DB, rdb *redis.Client) *AchievementRepository {
	return &AchievementRepository{DB: db, Redis: rdb}
}

// FindActive 查询启用中的成就目录，带短 TTL 缓存。
// 目录只在运营调整时变化，缓存过期后自然刷新即可。
func (r *AchievementRepository) FindActive(ctx context.Context) ([]model.Achievement, error) {
	if r.Redis != nil {
		if data, err := r.Redis.Get(ctx, achievementCatalogKey).Bytes(); err == nil {
			var cached []model.Achievement
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	var achievements []model.Achievement
	if err := r.DB.Where("is_active = ?", true).Find(&achievements).Error; err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, err := json.Marshal(achievements); err == nil {
			r.Redis.Set(ctx, achievementCatalogKey, data, achievementCatalogTTL)
		}
	}
	return achievements, nil
}

func (r *AchievementRepository) FindByID(id uint) (*model.Achievement, error) {
	var a model.Achievement
	err := r.DB.First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAchievementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindEarnedByUser 查询用户已获得的成就记录，成就定义由调用方从目录补齐
func (r *AchievementRepository) FindEarnedByUser(userID uint) ([]model.UserAchievement, error) {
	var earned []model.UserAchievement
	err := r.DB.
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error
	return earned, err
}

// EarnedIDSet 用户已获得成就的 ID 集合，用于授予前的去重判断
func (r *AchievementRepository) EarnedIDSet(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CreateUserAchievement 落库一条获得记录。唯一索引兜底并发重复授予，
// 撞索引时返回 ErrAlreadyEarned，调用方按已获得处理。
func (r *AchievementRepository) CreateUserAchievement(ua *model.UserAchievement) error {
	err := r.DB.Create(ua).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return util.ErrAlreadyEarned
	}
	return err
}

// MarkViewed 标记成就通知已读
func (r *AchievementRepository) MarkViewed(userID, achievementID uint) error {
	res := r.DB.Model(&model.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Update("is_viewed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAchievementNotFound
	}
	return nil
}
