package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendController struct {
	FriendService *service.FriendService
}

func NewFriendController(friendService *service.FriendService) *FriendController {
	return &FriendController{FriendService: friendService}
}

type FriendRequest struct {
	FriendID uint `json:"friend_id" binding:"required"`
}

// Index godoc
// @Summary 好友概览
// @Description 好友列表、收到的申请与发出的申请
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.FriendsOverview}
// @Router /api/friends [get]
func (c *FriendController) Index(ctx *gin.Context) {
	overview, err := c.FriendService.Overview(currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to load friends")
		return
	}
	util.Success(ctx, overview)
}

// List godoc
// @Summary 好友列表
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.FriendView}
// @Router /api/friends/list [get]
func (c *FriendController) List(ctx *gin.Context) {
	friends, err := c.FriendService.ListFriends(currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to load friends")
		return
	}
	util.Success(ctx, friends)
}

// Send godoc
// @Summary 发送好友申请
// @Tags 好友
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body FriendRequest true "对方用户 ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "已是好友或申请已存在"
// @Router /api/friends [post]
func (c *FriendController) Send(ctx *gin.Context) {
	var req FriendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	friend, err := c.FriendService.SendRequest(currentUserID(ctx), req.FriendID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to send friend request")
		return
	}
	util.Flash(ctx, "Friend request sent!", gin.H{"requestId": friend.ID})
}

// Accept godoc
// @Summary 接受好友申请
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "申请 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/friends/{id}/accept [post]
func (c *FriendController) Accept(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, err := c.FriendService.Accept(id, currentUserID(ctx)); err != nil {
		util.HandleError(ctx, err, "Failed to accept friend request")
		return
	}
	util.Flash(ctx, "Friend request accepted!", nil)
}

// Reject godoc
// @Summary 拒绝好友申请
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "申请 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/friends/{id}/reject [post]
func (c *FriendController) Reject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.FriendService.Reject(id, currentUserID(ctx)); err != nil {
		util.HandleError(ctx, err, "Failed to reject friend request")
		return
	}
	util.Flash(ctx, "Friend request rejected.", nil)
}

// Remove godoc
// @Summary 删除好友
// @Tags 好友
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "好友关系 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/friends/{id} [delete]
func (c *FriendController) Remove(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.FriendService.Remove(id, currentUserID(ctx)); err != nil {
		util.HandleError(ctx, err, "Failed to remove friend")
		return
	}
	util.Flash(ctx, "Friend removed.", nil)
}
