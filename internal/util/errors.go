package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrProgressNotFound    = errors.New("progress record not found")
	ErrLessonNotFound      = errors.New("lesson not found in curriculum")
	ErrModuleNotFound      = errors.New("module not found in curriculum")
	ErrVersionConflict     = errors.New("progress was modified concurrently")
	ErrAlreadyEarned       = errors.New("achievement already earned")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrInvalidSection      = errors.New("invalid lesson section")
)
