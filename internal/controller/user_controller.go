package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// Search godoc
// @Summary 搜索用户
// @Description 按名称或邮箱搜索，用于添加好友，至少 2 个字符
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   q query string true "关键词"
// @Success 200 {object} util.Response{data=[]model.PublicUser}
// @Router /api/users/search [get]
func (c *UserController) Search(ctx *gin.Context) {
	users, err := c.UserService.Search(currentUserID(ctx), ctx.Query("q"))
	if err != nil {
		util.HandleError(ctx, err, "Search failed")
		return
	}
	util.Success(ctx, users)
}
