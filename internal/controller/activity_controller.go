package controller

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const activityPageSize = 20

type ActivityController struct {
	ActivityService *service.ActivityService
}

func NewActivityController(activityService *service.ActivityService) *ActivityController {
	return &ActivityController{ActivityService: activityService}
}

type RecordActivityRequest struct {
	Type        string                 `json:"type" binding:"required,max=50"`
	Action      string                 `json:"action" binding:"required,max=255"`
	SubjectType string                 `json:"subject_type"`
	SubjectID   *uint                  `json:"subject_id"`
	Data        map[string]interface{} `json:"data"`
}

// Index godoc
// @Summary 动态列表
// @Tags 动态
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/activity [get]
func (c *ActivityController) Index(ctx *gin.Context) {
	page := pageParam(ctx)
	limit := util.ParseLimit(ctx.Query("limit"), activityPageSize, 100)
	activities, total, err := c.ActivityService.List(page, limit)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load activities")
		return
	}
	util.Success(ctx, util.PageResponse{List: activities, Total: total, Page: page, Limit: limit})
}

// Data godoc
// @Summary 动态快照
// @Description 轮询使用，返回最新 50 条及服务器时间
// @Tags 动态
// @Produce  json
// @Success 200 {object} util.Response{data=service.ActivitySnapshot}
// @Router /api/activity/data [get]
func (c *ActivityController) Data(ctx *gin.Context) {
	snapshot, err := c.ActivityService.Snapshot()
	if err != nil {
		util.HandleError(ctx, err, "Failed to load activities")
		return
	}
	util.Success(ctx, snapshot)
}

// Record godoc
// @Summary 记录动态
// @Tags 动态
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body RecordActivityRequest true "动态内容"
// @Success 201 {object} util.Response{data=model.Activity}
// @Failure 422 {object} util.Response
// @Router /api/activity [post]
func (c *ActivityController) Record(ctx *gin.Context) {
	var req RecordActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	subject, ok := model.ParseSubject(req.SubjectType, req.SubjectID)
	if !ok {
		util.HandleError(ctx, util.FieldValidation("subject_type", "The selected subject type is invalid."), "")
		return
	}

	activity, err := c.ActivityService.Record(currentUserID(ctx), service.RecordInput{
		Type:    req.Type,
		Action:  req.Action,
		Subject: subject,
		Data:    req.Data,
	})
	if err != nil {
		util.HandleError(ctx, err, "Failed to record activity")
		return
	}
	util.Created(ctx, activity)
}
