package controller

import (
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

type SubmitScoreRequest struct {
	GameID uint   `json:"game_id" binding:"required"`
	Score  *int64 `json:"score" binding:"required"`
}

// Index godoc
// @Summary 排行榜
// @Description type 可选 global/game/personal，personal 需要登录
// @Tags 排行榜
// @Produce  json
// @Param   type query string false "榜单类型"
// @Param   game_id query int false "游戏 ID，type=game 时必填"
// @Success 200 {object} util.Response{data=object}
// @Router /api/leaderboard [get]
func (c *LeaderboardController) Index(ctx *gin.Context) {
	boardType := ctx.DefaultQuery("type", service.BoardGlobal)
	userID := currentUserID(ctx)
	if boardType == service.BoardPersonal && userID == 0 {
		util.Unauthorized(ctx)
		return
	}

	var gameID uint
	if boardType == service.BoardGame {
		id, err := strconv.ParseUint(ctx.Query("game_id"), 10, 32)
		if err != nil || id == 0 {
			util.HandleError(ctx, util.FieldValidation("game_id", "The game id field is required."), "")
			return
		}
		gameID = uint(id)
	}

	resolved, entries, err := c.LeaderboardService.Board(boardType, gameID, userID)
	if err != nil {
		util.HandleError(ctx, err, "Failed to load leaderboard")
		return
	}
	games, err := c.LeaderboardService.Games()
	if err != nil {
		util.HandleError(ctx, err, "Failed to load leaderboard")
		return
	}

	util.Success(ctx, gin.H{
		"type":        resolved,
		"leaderboard": entries,
		"games":       games,
	})
}

// Submit godoc
// @Summary 提交成绩
// @Description 只有超过个人最高分才会记录
// @Tags 排行榜
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SubmitScoreRequest true "成绩"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/leaderboard [post]
func (c *LeaderboardController) Submit(ctx *gin.Context) {
	var req SubmitScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.LeaderboardService.SubmitScore(currentUserID(ctx), req.GameID, *req.Score)
	if err != nil {
		util.HandleError(ctx, err, "Failed to submit score")
		return
	}
	util.Flash(ctx, result.Message, result)
}
