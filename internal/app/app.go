package app

import (
	"context"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/controller"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/service"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/configwatcher"
	"game_portal_backend/pkg/database"
	"game_portal_backend/pkg/logger"
	"game_portal_backend/pkg/monitoring"
	"game_portal_backend/pkg/security"
	"game_portal_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	policy          *security.Policy
	configMu        sync.Mutex
	configCallbacks []func(*config.Config)
	shutdownTracer  func(context.Context) error
	ctx             context.Context
	cancel          context.CancelFunc
}

type repositories struct {
	user        *repository.UserRepository
	game        *repository.GameRepository
	friend      *repository.FriendRepository
	message     *repository.MessageRepository
	activity    *repository.ActivityRepository
	leaderboard *repository.LeaderboardRepository
	achievement *repository.AchievementRepository
	bookmark    *repository.BookmarkRepository
	favorite    *repository.FavoriteRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	storage     *service.StorageService
	activity    *service.ActivityService
	game        *service.GameService
	friend      *service.FriendService
	message     *service.MessageService
	leaderboard *service.LeaderboardService
	achievement *service.AchievementService
	bookmark    *service.BookmarkService
	favorite    *service.FavoriteService
	admin       *service.AdminService
	feedHub     *service.FeedHub
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	game        *controller.GameController
	friend      *controller.FriendController
	message     *controller.MessageController
	activity    *controller.ActivityController
	leaderboard *controller.LeaderboardController
	achievement *controller.AchievementController
	bookmark    *controller.BookmarkController
	favorite    *controller.FavoriteController
	admin       *controller.AdminController
	realtime    *controller.RealtimeController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configMu.Lock()
	defer a.configMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	a.configMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.configMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		game:        repository.NewGameRepository(db),
		friend:      repository.NewFriendRepository(db, rdb),
		message:     repository.NewMessageRepository(db),
		activity:    repository.NewActivityRepository(db),
		leaderboard: repository.NewLeaderboardRepository(db, rdb),
		achievement: repository.NewAchievementRepository(db),
		bookmark:    repository.NewBookmarkRepository(db),
		favorite:    repository.NewFavoriteRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.feedHub = service.NewFeedHub(rdb, repos.friend)
	go s.feedHub.Run()

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.activity = service.NewActivityService(
		repos.activity,
		repos.game,
		repos.achievement,
		repos.user,
		s.storage,
		s.feedHub,
		cfg.Realtime.SnapshotSize(),
	)
	s.game = service.NewGameService(repos.game, repos.bookmark, repos.favorite, s.activity, s.storage, cfg)
	s.friend = service.NewFriendService(repos.friend, repos.user, s.feedHub, s.feedHub, cfg.Realtime.PresenceWindow())
	s.message = service.NewMessageService(repos.message, repos.user, s.feedHub)
	s.leaderboard = service.NewLeaderboardService(repos.leaderboard, repos.game)
	s.achievement = service.NewAchievementService(repos.achievement, s.activity, nil)
	s.bookmark = service.NewBookmarkService(repos.bookmark, repos.game, s.storage)
	s.favorite = service.NewFavoriteService(repos.favorite, repos.game, s.storage)
	s.admin = service.NewAdminService(repos.game, repos.user, s.leaderboard, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		game:        controller.NewGameController(s.game),
		friend:      controller.NewFriendController(s.friend),
		message:     controller.NewMessageController(s.message),
		activity:    controller.NewActivityController(s.activity),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		achievement: controller.NewAchievementController(s.achievement),
		bookmark:    controller.NewBookmarkController(s.bookmark),
		favorite:    controller.NewFavoriteController(s.favorite),
		admin:       controller.NewAdminController(s.admin, s.user),
		realtime:    controller.NewRealtimeController(s.feedHub),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.policy = security.NewPolicy(
		cfg.CORS.AllowedOrigins,
		cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
	)
	go a.policy.Sweep(a.ctx)

	router.Use(a.policy.CORS())
	router.Use(security.Secure())
	router.Use(a.policy.RateLimiter())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloaders 配置文件变更后无需重启即可生效的部分
func (a *App) registerReloaders(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.policy.SetOrigins(cfg.CORS.AllowedOrigins)
		a.policy.SetRate(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.activity.SetSnapshotSize(cfg.Realtime.SnapshotSize())
		s.friend.SetPresenceWindow(cfg.Realtime.PresenceWindow())
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.Level.SetLevel(logger.LevelFor(cfg.Server.Mode))
	})
}

func (a *App) startBackgroundTasks() {
	go func() {
		if err := configwatcher.WatchConfig(a.ctx, configFile, a.reloadConfig); err != nil {
			logger.Log.Warn("Config watcher disabled", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.MigrateOnly {
		return app
	}

	// Redis 不可用时推送中心退化为单实例，缓存直接回源数据库
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, running without cache and cross-instance feed", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	shutdownTracer, err := tracing.InitTracer("game-portal", &cfg.Tracing)
	if err != nil {
		logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	app.shutdownTracer = shutdownTracer

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, services, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerReloaders(services)
	app.startBackgroundTasks()

	return app
}

func ginMode(mode string) string {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 先关闭推送连接并清理 Redis 在线状态
	if a.services != nil && a.services.feedHub != nil {
		a.services.feedHub.Stop()
	}
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
