package security

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Policy 跨域白名单与限流参数，配置文件变更时整体替换
type Policy struct {
	mu       sync.RWMutex
	origins  map[string]bool
	limit    rate.Limit
	burst    int
	window   time.Duration
	visitors map[string]*visitor
}

// visitor 包装限流器和最后活跃时间，用于定期清理
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewPolicy(allowedOrigins []string, maxRequests int, window time.Duration) *Policy {
	p := &Policy{visitors: make(map[string]*visitor)}
	p.SetOrigins(allowedOrigins)
	p.SetRate(maxRequests, window)
	return p
}

func (p *Policy) SetOrigins(allowedOrigins []string) {
	set := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		set[o] = true
	}
	p.mu.Lock()
	p.origins = set
	p.mu.Unlock()
}

// SetRate 更新限流参数，已有的访客限流器一并作废
func (p *Policy) SetRate(maxRequests int, window time.Duration) {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	p.mu.Lock()
	p.limit = rate.Every(window / time.Duration(maxRequests))
	p.burst = maxRequests
	p.window = window
	p.visitors = make(map[string]*visitor)
	p.mu.Unlock()
}

func (p *Policy) AllowsOrigin(origin string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.origins[origin]
}

// CORS 中间件 仅允许白名单中的Origin，支持Credentials
func (p *Policy) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && p.AllowsOrigin(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (p *Policy) allow(key string) bool {
	p.mu.Lock()
	v, exists := p.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.visitors[key] = v
	}
	v.lastSeen = time.Now()
	p.mu.Unlock()

	return v.limiter.Allow()
}

// RateLimiter 限流中间件 按IP限流
func (p *Policy) RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !p.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Too many requests",
			})
			return
		}
		c.Next()
	}
}

// Sweep 定期清理长时间不活跃的访客，ctx 结束时退出
func (p *Policy) Sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(time.Now())
		}
	}
}

func (p *Policy) sweep(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	expiry := p.window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	for ip, v := range p.visitors {
		if now.Sub(v.lastSeen) > expiry {
			delete(p.visitors, ip)
		}
	}
}

// Secure 中间件
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 防止点击劫持
		c.Header("X-Frame-Options", "DENY")
		// HSTS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}
