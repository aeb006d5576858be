package app

import (
	"game_portal_backend/docs"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/middleware"
	"game_portal_backend/pkg/monitoring"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// lastSeenInterval 同一用户两次写 last_seen 的最小间隔
const lastSeenInterval = 30 * time.Second

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	presence := middleware.PresenceMiddleware(s.user, lastSeenInterval)

	// 1. 公共路由，登录用户附带个人状态
	public := router.Group("/api")
	public.Use(middleware.OptionalAuth(cfg), presence)
	a.registerPublicRoutes(public, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), presence)
	a.registerUserRoutes(authGroup, c)

	// 3. 管理员路由
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(repos.user), presence)
	a.registerAdminRoutes(adminGroup, c)
}

func (a *App) registerPublicRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/health", c.health.HealthCheck)
	rg.POST("/register", c.auth.Register)
	rg.POST("/login", c.auth.Login)

	rg.GET("/home", c.game.Home)
	rg.GET("/games", c.game.List)
	rg.GET("/games/catalog", c.game.Catalog)
	rg.GET("/games/categories", c.game.Categories)
	rg.GET("/games/:slug", c.game.Show)
	rg.GET("/games/:slug/qrcode", c.game.QRCode)

	rg.GET("/activity", c.activity.Index)
	rg.GET("/activity/data", c.activity.Data)

	rg.GET("/leaderboard", c.leaderboard.Index)
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/users/search", c.user.Search)

	rg.POST("/games/:slug/play", c.game.Play)

	// 好友
	rg.GET("/friends", c.friend.Index)
	rg.GET("/friends/list", c.friend.List)
	rg.POST("/friends", c.friend.Send)
	rg.POST("/friends/:id/accept", c.friend.Accept)
	rg.POST("/friends/:id/reject", c.friend.Reject)
	rg.DELETE("/friends/:id", c.friend.Remove)

	// 私信
	rg.GET("/messages", c.message.Index)
	rg.GET("/messages/unread", c.message.Unread)
	rg.GET("/messages/:userId", c.message.Show)
	rg.GET("/messages/:userId/poll", c.message.Poll)
	rg.POST("/messages", c.message.Send)

	rg.POST("/activity", c.activity.Record)
	rg.POST("/leaderboard", c.leaderboard.Submit)

	// 成就
	rg.GET("/achievements", c.achievement.Index)
	rg.GET("/achievements/:id", c.achievement.Show)

	// 书签与收藏
	rg.GET("/bookmarks", c.bookmark.Index)
	rg.POST("/bookmarks", c.bookmark.Store)
	rg.PUT("/bookmarks/:id", c.bookmark.Update)
	rg.DELETE("/bookmarks/:id", c.bookmark.Destroy)
	rg.DELETE("/bookmarks/game/:gameId", c.bookmark.DestroyByGame)

	rg.GET("/favorites", c.favorite.Index)
	rg.POST("/favorites", c.favorite.Store)
	rg.POST("/favorites/toggle", c.favorite.Toggle)
	rg.DELETE("/favorites/:id", c.favorite.Destroy)

	// 实时推送
	rg.GET("/realtime/ws", c.realtime.Connect)
	rg.GET("/realtime/channels/:channel", c.realtime.Channel)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/dashboard", c.admin.Dashboard)

	rg.GET("/games", c.admin.Games)
	rg.POST("/games", c.game.Create)
	rg.PUT("/games/:id", c.game.Update)
	rg.DELETE("/games/:id", c.game.Delete)
	rg.PATCH("/games/:id/toggle-active", c.game.ToggleActive)
	rg.PATCH("/games/:id/toggle-featured", c.game.ToggleFeatured)

	rg.GET("/users", c.admin.Users)
	rg.PATCH("/users/:id/toggle-admin", c.admin.ToggleAdmin)

	rg.POST("/achievements/:id/unlock", c.achievement.Unlock)
	rg.POST("/achievements/:id/progress", c.achievement.Progress)

	rg.GET("/leaderboard/export", c.admin.ExportLeaderboard)
}
