package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RealtimeController struct {
	Hub *service.FeedHub
}

func NewRealtimeController(hub *service.FeedHub) *RealtimeController {
	return &RealtimeController{Hub: hub}
}

// Connect godoc
// @Summary 建立推送连接
// @Description 升级为 WebSocket，默认订阅 activity、messages:{uid}、friends:{uid}
// @Tags 实时
// @Security ApiKeyAuth
// @Param   token query string false "JWT Token，浏览器无法设置请求头时使用"
// @Router /api/realtime/ws [get]
func (c *RealtimeController) Connect(ctx *gin.Context) {
	userID := currentUserID(ctx)
	if userID == 0 {
		util.Unauthorized(ctx)
		return
	}
	service.ServeFeed(c.Hub, ctx.Writer, ctx.Request, userID)
}

// Channel godoc
// @Summary 频道握手
// @Description 兼容旧客户端的频道接口，只返回连接确认
// @Tags 实时
// @Produce  json
// @Security ApiKeyAuth
// @Param   channel path string true "频道名"
// @Success 200 {object} object
// @Router /api/realtime/channels/{channel} [get]
func (c *RealtimeController) Channel(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":  "connected",
		"channel": ctx.Param("channel"),
		"message": "WebSocket connection established",
	})
}
