package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BookmarkController struct {
	BookmarkService *service.BookmarkService
}

func NewBookmarkController(bookmarkService *service.BookmarkService) *BookmarkController {
	return &BookmarkController{BookmarkService: bookmarkService}
}

type BookmarkRequest struct {
	GameID   uint   `json:"game_id" binding:"required"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

type UpdateBookmarkRequest struct {
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// Index godoc
// @Summary 书签列表
// @Tags 书签
// @Produce  json
// @Security ApiKeyAuth
// @Param   category query string false "分类，all 表示全部"
// @Success 200 {object} util.Response{data=object}
// @Router /api/bookmarks [get]
func (c *BookmarkController) Index(ctx *gin.Context) {
	userID := currentUserID(ctx)
	category := ctx.DefaultQuery("category", "all")

	bookmarks, err := c.BookmarkService.List(userID, category)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load bookmarks")
		return
	}
	categories, err := c.BookmarkService.Categories(userID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load bookmarks")
		return
	}
	util.Success(ctx, gin.H{
		"bookmarks":  bookmarks,
		"categories": categories,
		"category":   category,
	})
}

// Store godoc
// @Summary 添加书签
// @Tags 书签
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body BookmarkRequest true "书签"
// @Success 201 {object} util.Response{data=model.Bookmark}
// @Failure 409 {object} util.Response "已添加过"
// @Router /api/bookmarks [post]
func (c *BookmarkController) Store(ctx *gin.Context) {
	var req BookmarkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	bookmark, err := c.BookmarkService.Create(currentUserID(ctx), req.GameID, req.Category, req.Notes)
	if err != nil {
		util.HandleError(ctx, err, "Failed to bookmark game")
		return
	}
	util.Created(ctx, bookmark)
}

// Update godoc
// @Summary 更新书签
// @Tags 书签
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "书签 ID"
// @Param   body body UpdateBookmarkRequest true "分类与备注"
// @Success 200 {object} util.Response{data=model.Bookmark}
// @Failure 403 {object} util.Response
// @Router /api/bookmarks/{id} [put]
func (c *BookmarkController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateBookmarkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	bookmark, err := c.BookmarkService.Update(id, currentUserID(ctx), req.Category, req.Notes)
	if err != nil {
		util.HandleError(ctx, err, "Failed to update bookmark")
		return
	}
	util.Flash(ctx, "Bookmark updated!", bookmark)
}

// Destroy godoc
// @Summary 删除书签
// @Tags 书签
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "书签 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/bookmarks/{id} [delete]
func (c *BookmarkController) Destroy(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.BookmarkService.Delete(id, currentUserID(ctx)); err != nil {
		util.HandleError(ctx, err, "Failed to remove bookmark")
		return
	}
	util.Flash(ctx, "Bookmark removed!", nil)
}

// DestroyByGame godoc
// @Summary 按游戏删除书签
// @Tags 书签
// @Produce  json
// @Security ApiKeyAuth
// @Param   gameId path int true "游戏 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/bookmarks/game/{gameId} [delete]
func (c *BookmarkController) DestroyByGame(ctx *gin.Context) {
	gameID, ok := pathID(ctx, "gameId")
	if !ok {
		return
	}
	if err := c.BookmarkService.DeleteByGame(currentUserID(ctx), gameID); err != nil {
		util.HandleError(ctx, err, "Failed to remove bookmark")
		return
	}
	util.Flash(ctx, "Bookmark removed!", nil)
}
