package controller

import (
	"lingua_learn_backend/internal/service"
	"lingua_learn_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	ProgressService *service.ProgressService
}

func NewPracticeController(progressService *service.ProgressService) *PracticeController {
	return &PracticeController{ProgressService: progressService}
}

// SubmitPronunciation godoc
// @Summary 提交发音练习
// @Description 上传发音录音并记录一次发音练习，准确率由客户端评测后随表单上报
// @Tags 发音练习
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   audio formData file true "录音文件"
// @Param   score formData number true "发音准确率 0-100"
// @Success 200 {object} util.Response{data=service.PronunciationResult}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "进度已被并发修改，请重试"
// @Router /api/practice/pronunciation [post]
func (c *PracticeController) SubmitPronunciation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("audio")
	if err != nil {
		util.BadRequest(ctx, "缺少录音文件")
		return
	}

	score, err := strconv.ParseFloat(ctx.PostForm("score"), 64)
	if err != nil || score < 0 || score > 100 {
		util.BadRequest(ctx, "发音准确率必须在 0-100 之间")
		return
	}

	result, err := c.ProgressService.SubmitPronunciation(ctx.Request.Context(), claims.UserID, file, score)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, result)
}
