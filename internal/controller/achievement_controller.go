package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

type ProgressRequest struct {
	UserID   uint `json:"user_id" binding:"required"`
	Progress *int `json:"progress" binding:"required"`
}

type UnlockRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Index godoc
// @Summary 成就列表
// @Description 可见成就及当前用户进度，附带统计
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Param   type query string false "成就类型，all 表示全部"
// @Success 200 {object} util.Response{data=object}
// @Router /api/achievements [get]
func (c *AchievementController) Index(ctx *gin.Context) {
	userID := currentUserID(ctx)
	typ := ctx.DefaultQuery("type", "all")

	achievements, err := c.AchievementService.List(userID, typ)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load achievements")
		return
	}
	stats, err := c.AchievementService.Stats(userID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load achievements")
		return
	}
	util.Success(ctx, gin.H{
		"achievements": achievements,
		"stats":        stats,
		"type":         typ,
	})
}

// Show godoc
// @Summary 成就详情
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "成就 ID"
// @Success 200 {object} util.Response{data=service.AchievementView}
// @Failure 404 {object} util.Response
// @Router /api/achievements/{id} [get]
func (c *AchievementController) Show(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.AchievementService.Show(currentUserID(ctx), id)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load achievement")
		return
	}
	util.Success(ctx, view)
}

// Unlock godoc
// @Summary 为用户解锁成就
// @Tags 管理后台
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "成就 ID"
// @Param   body body UnlockRequest true "用户"
// @Success 200 {object} util.Response{data=service.AchievementView}
// @Router /api/admin/achievements/{id}/unlock [post]
func (c *AchievementController) Unlock(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req UnlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.AchievementService.Unlock(req.UserID, id)
	if err != nil {
		util.HandleError(ctx, err, "Failed to unlock achievement")
		return
	}
	util.Success(ctx, view)
}

// Progress godoc
// @Summary 设置成就进度
// @Description 进度达到 100 时自动解锁
// @Tags 管理后台
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "成就 ID"
// @Param   body body ProgressRequest true "进度"
// @Success 200 {object} util.Response{data=service.AchievementView}
// @Router /api/admin/achievements/{id}/progress [post]
func (c *AchievementController) Progress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.AchievementService.SetProgress(req.UserID, id, *req.Progress)
	if err != nil {
		util.HandleError(ctx, err, "Failed to update achievement progress")
		return
	}
	util.Success(ctx, view)
}
