package middleware

import (
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/logger"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}
	// 浏览器 WebSocket 无法带请求头，允许通过 query 传递
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	return tokenString
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时注入用户，否则按游客继续
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret); err == nil {
				c.Set("user", claims)
			}
		}
		c.Next()
	}
}

type UserFinder interface {
	FindByID(id uint) (*model.User, error)
}

// AdminMiddleware 以数据库中的标记为准，token 里的 is_admin 可能已过期
func AdminMiddleware(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil || !user.IsAdmin {
			util.Error(c, 403, "Unauthorized. Admin access required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

type LastSeenToucher interface {
	TouchLastSeen(userID uint) error
}

// PresenceMiddleware 记录最近活跃时间，同一用户在 interval 内只写一次
func PresenceMiddleware(toucher LastSeenToucher, interval time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	touched := make(map[uint]time.Time)

	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			now := time.Now()
			mu.Lock()
			due := now.Sub(touched[claims.UserID]) >= interval
			if due {
				touched[claims.UserID] = now
			}
			mu.Unlock()

			if due {
				// 异步更新，不阻塞主流程
				go func(userID uint) {
					if err := toucher.TouchLastSeen(userID); err != nil {
						logger.Log.Warn("Failed to update last seen", zap.Uint("userID", userID), zap.Error(err))
					}
				}(claims.UserID)
			}
		}
		c.Next()
	}
}
