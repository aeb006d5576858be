package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	MessageService *service.MessageService
}

func NewMessageController(messageService *service.MessageService) *MessageController {
	return &MessageController{MessageService: messageService}
}

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Content    string `json:"content"`
}

// Index godoc
// @Summary 会话列表
// @Description 每个联系人保留最新一条消息及未读数，按时间倒序
// @Tags 私信
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.ConversationSummary}
// @Router /api/messages [get]
func (c *MessageController) Index(ctx *gin.Context) {
	conversations, err := c.MessageService.ListConversations(currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to load conversations")
		return
	}
	util.Success(ctx, conversations)
}

// Show godoc
// @Summary 打开会话
// @Description 返回完整历史，并把对方发来的未读消息标记为已读
// @Tags 私信
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "对方用户 ID"
// @Success 200 {object} util.Response{data=service.Conversation}
// @Failure 404 {object} util.Response
// @Router /api/messages/{userId} [get]
func (c *MessageController) Show(ctx *gin.Context) {
	partnerID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	conversation, err := c.MessageService.OpenConversation(currentUserID(ctx), partnerID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load conversation")
		return
	}
	util.Success(ctx, conversation)
}

// Poll godoc
// @Summary 轮询会话
// @Description 与打开会话相同的快照，但不标记已读
// @Tags 私信
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "对方用户 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/messages/{userId}/poll [get]
func (c *MessageController) Poll(ctx *gin.Context) {
	partnerID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	messages, err := c.MessageService.Poll(currentUserID(ctx), partnerID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load conversation")
		return
	}
	util.Success(ctx, gin.H{"messages": messages})
}

// Send godoc
// @Summary 发送私信
// @Tags 私信
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SendMessageRequest true "消息内容，最多 1000 字"
// @Success 201 {object} util.Response{data=model.Message}
// @Failure 422 {object} util.Response
// @Router /api/messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	msg, err := c.MessageService.SendMessage(currentUserID(ctx), req.ReceiverID, req.Content)
	if err != nil {
		util.HandleError(ctx, err, "Failed to send message")
		return
	}
	util.Created(ctx, msg)
}

// Unread godoc
// @Summary 未读消息数
// @Tags 私信
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UnreadSummary}
// @Router /api/messages/unread [get]
func (c *MessageController) Unread(ctx *gin.Context) {
	summary, err := c.MessageService.Unread(currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to load unread messages")
		return
	}
	util.Success(ctx, summary)
}
