package controller

import (
	"errors"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetProgress godoc
// @Summary 获取学习进度
// @Description 返回完整进度视图，解锁状态每次请求时重新推导
// @Tags 学习进度
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "进度记录不存在"
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ProgressService.GetProgress(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrProgressNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// UpdateLessonProgress godoc
// @Summary 上报课时进度
// @Description 首次标记完成时计入完成数并发放经验；重复完成不重复发奖
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   lessonId path string true "课时ID"
// @Param   body body service.LessonProgressRequest true "课时进度"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课时不存在"
// @Failure 409 {object} util.Response "进度已被并发修改，请重试"
// @Router /api/progress/lessons/{lessonId} [post]
func (c *ProgressController) UpdateLessonProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.LessonProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.UpdateLessonProgress(claims.UserID, ctx.Param("lessonId"), &req)
	if err != nil {
		c.handleProgressError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// UpdateSectionProgress godoc
// @Summary 上报小节完成
// @Description 标记课时内固定小节完成，推进当前小节指针
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   lessonId path string true "课时ID"
// @Param   body body service.SectionProgressRequest true "小节进度"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课时不存在"
// @Failure 409 {object} util.Response "进度已被并发修改，请重试"
// @Router /api/progress/lessons/{lessonId}/sections [post]
func (c *ProgressController) UpdateSectionProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SectionProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.UpdateSectionProgress(claims.UserID, ctx.Param("lessonId"), &req)
	if err != nil {
		c.handleProgressError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// SetCurrentLessonRequest 切换当前课时请求
type SetCurrentLessonRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
}

// SetCurrentLesson godoc
// @Summary 切换当前学习位置
// @Description 同步更新当前课时/模块/级别三个指针
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body SetCurrentLessonRequest true "目标课时"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课时不存在"
// @Failure 409 {object} util.Response "进度已被并发修改，请重试"
// @Router /api/progress/current-lesson [put]
func (c *ProgressController) SetCurrentLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SetCurrentLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.SetCurrentLesson(claims.UserID, req.LessonID)
	if err != nil {
		c.handleProgressError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// RecordPracticeSession godoc
// @Summary 记录自由练习
// @Description 课时体系之外的练习（复习、听力等），计入连续学习
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.PracticeSessionRequest true "练习信息"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "进度已被并发修改，请重试"
// @Router /api/progress/practice-sessions [post]
func (c *ProgressController) RecordPracticeSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PracticeSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProgressService.RecordPracticeSession(claims.UserID, &req)
	if err != nil {
		c.handleProgressError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// TriggerReconcile godoc
// @Summary 手动触发进度对账
// @Description 管理员接口，扫描指定小时数内活跃的用户并修复计数漂移，hours 为 0 时全量对账
// @Tags 学习进度
// @Produce  json
// @Security BearerAuth
// @Param   hours query int false "回溯小时数，默认 24"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response "未登录"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/admin/reconcile [post]
func (c *ProgressController) TriggerReconcile(ctx *gin.Context) {
	hours, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))
	if err != nil || hours < 0 {
		util.BadRequest(ctx, "hours 参数无效")
		return
	}

	since := time.Unix(0, 0)
	if hours > 0 {
		since = time.Now().Add(-time.Duration(hours) * time.Hour)
	}

	scanned, fixed := c.ProgressService.ReconcileRecent(since)
	util.Success(ctx, gin.H{
		"scanned": scanned,
		"fixed":   fixed,
	})
}

func (c *ProgressController) handleProgressError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrModuleNotFound):
		util.Error(ctx, 404, err.Error())
	case errors.Is(err, util.ErrProgressNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrVersionConflict):
		util.Conflict(ctx, "进度已被其他请求修改，请重试")
	case errors.Is(err, util.ErrInvalidSection):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
