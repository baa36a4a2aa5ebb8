package repository

import (
	"errors"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/util"

	"gorm.io/gorm"
)

// CurriculumRepository 课程目录只读访问
type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

// GetLevels 加载完整课程树，级别/模块/课时均按顺序返回
func (r *CurriculumRepository) GetLevels() ([]model.CurriculumLevel, error) {
	var levels []model.CurriculumLevel
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` ASC")
		}).
		Order("`order` ASC").
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// GetThresholds 加载等级表
func (r *CurriculumRepository) GetThresholds() ([]model.LevelThreshold, error) {
	var thresholds []model.LevelThreshold
	err := r.DB.Order("level ASC").Find(&thresholds).Error
	if err != nil {
		return nil, err
	}
	return thresholds, nil
}

func (r *CurriculumRepository) FindLessonByID(id string) (*model.CurriculumLesson, error) {
	var lesson model.CurriculumLesson
	err := r.DB.Where("id = ?", id).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CurriculumRepository) FindModuleByID(id string) (*model.CurriculumModule, error) {
	var mod model.CurriculumModule
	err := r.DB.Where("id = ?", id).First(&mod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mod, nil
}
