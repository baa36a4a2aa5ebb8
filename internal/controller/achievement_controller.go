package controller

import (
	"errors"
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// CheckAchievements godoc
// @Summary 触发成就判定
// @Description 对当前用户跑一轮完整的成就判定，返回本轮新获得的成就
// @Tags 成就系统
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.AwardedAchievement}
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "进度记录不存在"
// @Router /api/achievements/check [post]
func (c *AchievementController) CheckAchievements(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	awarded, err := c.AchievementService.CheckAndAward(ctx.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrProgressNotFound) {
			util.NotFound(ctx)
		} else if errors.Is(err, util.ErrVersionConflict) {
			util.Conflict(ctx, "进度已被其他请求修改，请重试")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if awarded == nil {
		awarded = []service.AwardedAchievement{}
	}
	util.Success(ctx, awarded)
}

// GetUserAchievements godoc
// @Summary 获取成就列表
// @Description 已获得的带获得时间，未获得的带进度估算；未获得的隐藏成就不返回
// @Tags 成就系统
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.AchievementView}
// @Failure 401 {object} util.Response "未登录"
// @Router /api/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.AchievementService.GetUserAchievements(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, views)
}

// MarkViewed godoc
// @Summary 标记成就通知已读
// @Tags 成就系统
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "成就ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "成就未获得"
// @Router /api/achievements/{id}/viewed [patch]
func (c *AchievementController) MarkViewed(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	achievementID := util.MustParseUint(ctx.Param("id"))
	if achievementID == 0 {
		util.BadRequest(ctx, "无效的成就ID")
		return
	}

	if err := c.AchievementService.MarkViewed(claims.UserID, achievementID); err != nil {
		if errors.Is(err, util.ErrAchievementNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// GetLeaderboard godoc
// @Summary 经验排行榜
// @Tags 成就系统
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "返回条数，默认10，最大100"
// @Success 200 {object} util.Response{data=[]repository.LeaderboardRow}
// @Router /api/achievements/leaderboard [get]
func (c *AchievementController) GetLeaderboard(ctx *gin.Context) {
	limit := int(util.MustParseUint(ctx.DefaultQuery("limit", "10")))

	rows, err := c.AchievementService.GetLeaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rows)
}
