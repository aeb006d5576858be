package controller

import (
	"game_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径上的数字 ID，非法时直接写 404
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

// currentUserID 未登录时返回 0
func currentUserID(c *gin.Context) uint {
	if claims := util.GetUserFromContext(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
