package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FavoriteController struct {
	FavoriteService *service.FavoriteService
}

func NewFavoriteController(favoriteService *service.FavoriteService) *FavoriteController {
	return &FavoriteController{FavoriteService: favoriteService}
}

type FavoriteRequest struct {
	GameID uint `json:"game_id" binding:"required"`
}

// Index godoc
// @Summary 收藏列表
// @Tags 收藏
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.FavoriteView}
// @Router /api/favorites [get]
func (c *FavoriteController) Index(ctx *gin.Context) {
	favorites, err := c.FavoriteService.List(currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to load favorites")
		return
	}
	util.Success(ctx, favorites)
}

// Store godoc
// @Summary 添加收藏
// @Tags 收藏
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body FavoriteRequest true "游戏"
// @Success 201 {object} util.Response{data=model.Favorite}
// @Failure 409 {object} util.Response
// @Router /api/favorites [post]
func (c *FavoriteController) Store(ctx *gin.Context) {
	var req FavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	favorite, err := c.FavoriteService.Add(currentUserID(ctx), req.GameID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to add favorite")
		return
	}
	util.Created(ctx, favorite)
}

// Destroy godoc
// @Summary 取消收藏
// @Tags 收藏
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "收藏 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/favorites/{id} [delete]
func (c *FavoriteController) Destroy(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.FavoriteService.Delete(id, currentUserID(ctx)); err != nil {
		util.HandleError(ctx, err, "Failed to remove favorite")
		return
	}
	util.Flash(ctx, "Game removed from favorites!", nil)
}

// Toggle godoc
// @Summary 切换收藏
// @Tags 收藏
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body FavoriteRequest true "游戏"
// @Success 200 {object} util.Response{data=object} "{favorited: bool}"
// @Router /api/favorites/toggle [post]
func (c *FavoriteController) Toggle(ctx *gin.Context) {
	var req FavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	favorited, err := c.FavoriteService.Toggle(currentUserID(ctx), req.GameID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to update favorite")
		return
	}
	message := "Removed from favorites"
	if favorited {
		message = "Added to favorites"
	}
	util.Flash(ctx, message, gin.H{"favorited": favorited})
}
