package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	GameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{GameService: gameService}
}

// GameForm 创建与更新游戏的表单，封面通过 image 字段上传
// swagger:model GameForm
type GameForm struct {
	Title       string   `form:"title" binding:"required,max=255"`
	Description string   `form:"description" binding:"required"`
	Category    string   `form:"category" binding:"required,max=100"`
	GameURL     string   `form:"game_url" binding:"omitempty,url"`
	Rating      *float64 `form:"rating" binding:"omitempty,gte=0,lte=5"`
	Plays       *int64   `form:"plays" binding:"omitempty,gte=0"`
	Featured    *bool    `form:"featured"`
	Active      *bool    `form:"active"`
}

func (f *GameForm) input() service.GameInput {
	return service.GameInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		GameURL:     f.GameURL,
		Rating:      f.Rating,
		Plays:       f.Plays,
		Featured:    f.Featured,
		Active:      f.Active,
	}
}

// List godoc
// @Summary 游戏列表（JSON）
// @Tags 游戏
// @Produce  json
// @Param   category query string false "分类"
// @Param   featured query bool false "仅推荐"
// @Param   trending query bool false "按热度排序"
// @Param   limit query int false "数量，默认 12"
// @Success 200 {object} util.Response{data=[]model.Game}
// @Router /api/games [get]
func (c *GameController) List(ctx *gin.Context) {
	featured, _ := strconv.ParseBool(ctx.Query("featured"))
	trending, _ := strconv.ParseBool(ctx.Query("trending"))
	games, err := c.GameService.PublicList(service.PublicQuery{
		Category: ctx.Query("category"),
		Featured: featured,
		Trending: trending,
		Limit:    util.ParseLimit(ctx.Query("limit"), util.CatalogPageSize, 100),
	})
	if err != nil {
		util.HandleError(ctx, err, "Failed to load games")
		return
	}
	util.Success(ctx, games)
}

// Catalog godoc
// @Summary 游戏目录
// @Description 分页浏览上架游戏，sort 可选 trending/new/featured
// @Tags 游戏
// @Produce  json
// @Param   category query string false "分类"
// @Param   sort query string false "排序"
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/games/catalog [get]
func (c *GameController) Catalog(ctx *gin.Context) {
	page, err := c.GameService.Catalog(service.CatalogQuery{
		Category: ctx.Query("category"),
		Sort:     ctx.Query("sort"),
		Page:     pageParam(ctx),
	})
	if err != nil {
		util.HandleError(ctx, err, "Failed to load games")
		return
	}
	util.Success(ctx, page)
}

// Categories godoc
// @Summary 游戏分类
// @Tags 游戏
// @Produce  json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/games/categories [get]
func (c *GameController) Categories(ctx *gin.Context) {
	categories, err := c.GameService.Categories()
	if err != nil {
		util.HandleError(ctx, err, "Failed to load categories")
		return
	}
	util.Success(ctx, categories)
}

// Home godoc
// @Summary 首页推荐
// @Description 登录用户附带书签与收藏状态
// @Tags 游戏
// @Produce  json
// @Success 200 {object} util.Response{data=service.HomePage}
// @Router /api/home [get]
func (c *GameController) Home(ctx *gin.Context) {
	page, err := c.GameService.Home(currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to load home page")
		return
	}
	util.Success(ctx, page)
}

// Show godoc
// @Summary 游戏详情
// @Tags 游戏
// @Produce  json
// @Param   slug path string true "游戏 slug"
// @Success 200 {object} util.Response{data=model.Game}
// @Failure 404 {object} util.Response
// @Router /api/games/{slug} [get]
func (c *GameController) Show(ctx *gin.Context) {
	game, err := c.GameService.Show(ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err, "Failed to load game")
		return
	}
	util.Success(ctx, gin.H{
		"game":     game,
		"shareUrl": c.GameService.ShareURL(game),
	})
}

// Play godoc
// @Summary 开始游戏
// @Description 增加播放次数并返回相关推荐
// @Tags 游戏
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "游戏 slug"
// @Success 200 {object} util.Response{data=service.PlayResult}
// @Failure 404 {object} util.Response
// @Router /api/games/{slug}/play [post]
func (c *GameController) Play(ctx *gin.Context) {
	result, err := c.GameService.Play(ctx.Param("slug"), currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to start game")
		return
	}
	util.Success(ctx, result)
}

// QRCode godoc
// @Summary 游戏分享二维码
// @Tags 游戏
// @Produce  png
// @Param   slug path string true "游戏 slug"
// @Success 200 {file} binary
// @Failure 404 {object} util.Response
// @Router /api/games/{slug}/qrcode [get]
func (c *GameController) QRCode(ctx *gin.Context) {
	png, err := c.GameService.QRCode(ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err, "Failed to generate QR code")
		return
	}
	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(http.StatusOK, "image/png", png)
}

// Create godoc
// @Summary 创建游戏
// @Tags 管理后台
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   title formData string true "标题"
// @Param   description formData string true "简介"
// @Param   category formData string true "分类"
// @Param   game_url formData string false "游戏地址"
// @Param   rating formData number false "评分 0-5"
// @Param   plays formData int false "播放次数"
// @Param   featured formData bool false "推荐"
// @Param   active formData bool false "上架"
// @Param   image formData file false "封面"
// @Success 201 {object} util.Response{data=model.Game}
// @Failure 422 {object} util.Response
// @Router /api/admin/games [post]
func (c *GameController) Create(ctx *gin.Context) {
	var form GameForm
	if err := ctx.ShouldBind(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	cover, _ := ctx.FormFile("image")

	game, err := c.GameService.Create(ctx.Request.Context(), currentUserID(ctx), form.input(), cover)
	if err != nil {
		util.HandleError(ctx, err, "Failed to create game")
		return
	}
	util.Created(ctx, game)
}

// Update godoc
// @Summary 更新游戏
// @Tags 管理后台
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "游戏 ID"
// @Param   title formData string true "标题"
// @Param   description formData string true "简介"
// @Param   category formData string true "分类"
// @Param   image formData file false "封面"
// @Success 200 {object} util.Response{data=model.Game}
// @Failure 404 {object} util.Response
// @Router /api/admin/games/{id} [put]
func (c *GameController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var form GameForm
	if err := ctx.ShouldBind(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	cover, _ := ctx.FormFile("image")

	game, err := c.GameService.Update(ctx.Request.Context(), id, form.input(), cover)
	if err != nil {
		util.HandleError(ctx, err, "Failed to update game")
		return
	}
	util.Flash(ctx, "Game updated successfully!", game)
}

// Delete godoc
// @Summary 删除游戏
// @Description 同时删除收藏、书签和成绩
// @Tags 管理后台
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "游戏 ID"
// @Success 200 {object} util.Response
// @Router /api/admin/games/{id} [delete]
func (c *GameController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.GameService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err, "Failed to delete game")
		return
	}
	util.Flash(ctx, "Game deleted successfully!", nil)
}

// ToggleActive godoc
// @Summary 切换上架状态
// @Tags 管理后台
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "游戏 ID"
// @Success 200 {object} util.Response{data=model.Game}
// @Router /api/admin/games/{id}/toggle-active [patch]
func (c *GameController) ToggleActive(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	game, err := c.GameService.ToggleActive(id)
	if err != nil {
		util.HandleError(ctx, err, "Failed to update game")
		return
	}
	util.Flash(ctx, "Game status updated successfully!", game)
}

// ToggleFeatured godoc
// @Summary 切换推荐状态
// @Tags 管理后台
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "游戏 ID"
// @Success 200 {object} util.Response{data=model.Game}
// @Router /api/admin/games/{id}/toggle-featured [patch]
func (c *GameController) ToggleFeatured(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	game, err := c.GameService.ToggleFeatured(id)
	if err != nil {
		util.HandleError(ctx, err, "Failed to update game")
		return
	}
	util.Flash(ctx, "Game featured status updated successfully!", game)
}
