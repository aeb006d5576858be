package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// FeedOnlineConnections 推送中心当前连接数
	FeedOnlineConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_online_connections",
			Help: "Number of live realtime feed connections",
		},
	)

	// FeedEventCounter 按主题类型与方向统计推送事件
	FeedEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_total",
			Help: "Realtime feed events by topic kind and direction",
		},
		[]string{"topic", "direction"},
	)

	ScoreSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_score_submissions_total",
			Help: "Score submissions by outcome",
		},
		[]string{"recorded"},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(FeedOnlineConnections)
		prometheus.MustRegister(FeedEventCounter)
		prometheus.MustRegister(ScoreSubmissions)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
