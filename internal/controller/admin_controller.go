package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

const adminPageSize = 20

type AdminController struct {
	AdminService *service.AdminService
	UserService  *service.UserService
}

func NewAdminController(adminService *service.AdminService, userService *service.UserService) *AdminController {
	return &AdminController{
		AdminService: adminService,
		UserService:  userService,
	}
}

// Dashboard godoc
// @Summary 后台概览
// @Description 游戏与用户统计，最近添加和最热门的 5 个游戏
// @Tags 管理后台
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.DashboardStats}
// @Router /api/admin/dashboard [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	stats, err := c.AdminService.Dashboard()
	if err != nil {
		util.HandleError(ctx, err, "Failed to load dashboard")
		return
	}
	util.Success(ctx, stats)
}

// Games godoc
// @Summary 后台游戏列表
// @Description 包含未上架的游戏
// @Tags 管理后台
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/games [get]
func (c *AdminController) Games(ctx *gin.Context) {
	page := pageParam(ctx)
	games, total, err := c.AdminService.Games(page, adminPageSize)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load games")
		return
	}
	util.Success(ctx, util.PageResponse{List: games, Total: total, Page: page, Limit: adminPageSize})
}

// Users godoc
// @Summary 后台用户列表
// @Tags 管理后台
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/users [get]
func (c *AdminController) Users(ctx *gin.Context) {
	page := pageParam(ctx)
	users, total, err := c.UserService.List(page, adminPageSize)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load users")
		return
	}
	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: adminPageSize})
}

// ToggleAdmin godoc
// @Summary 切换管理员身份
// @Description 不能修改自己的管理员身份
// @Tags 管理后台
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户 ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 403 {object} util.Response
// @Router /api/admin/users/{id}/toggle-admin [patch]
func (c *AdminController) ToggleAdmin(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.UserService.ToggleAdmin(currentUserID(ctx), id)
	if err != nil {
		util.HandleError(ctx, err, "Failed to update user")
		return
	}
	util.Flash(ctx, "User admin status updated successfully!", user)
}

// ExportLeaderboard godoc
// @Summary 导出全站排行榜
// @Tags 管理后台
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} binary
// @Router /api/admin/leaderboard/export [get]
func (c *AdminController) ExportLeaderboard(ctx *gin.Context) {
	data, err := c.AdminService.ExportLeaderboard()
	if err != nil {
		util.HandleError(ctx, err, "Failed to export leaderboard")
		return
	}
	filename := "leaderboard-" + time.Now().Format(util.DateFormat) + ".xlsx"
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
