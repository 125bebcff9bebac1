package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wrongbook_backend/internal/config"
	"wrongbook_backend/internal/controller"
	"wrongbook_backend/internal/repository"
	"wrongbook_backend/internal/service"
	"wrongbook_backend/pkg/database"
	"wrongbook_backend/pkg/logger"
	"wrongbook_backend/pkg/monitoring"
	"wrongbook_backend/pkg/security"
	"wrongbook_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	wrongQuestion *repository.WrongQuestionRepository
	mastery       *repository.MasteryRecordRepository
	reviewPlan    *repository.ReviewPlanRepository
	question      *repository.QuestionRepository
}

type services struct {
	auth          *service.AuthService
	storage       *service.StorageService
	wrongQuestion *service.WrongQuestionService
	mastery       *service.MasteryService
	review        *service.ReviewService
	question      *service.QuestionService
	analysis      *service.AnalysisService
}

type controllers struct {
	auth          *controller.AuthController
	wrongQuestion *controller.WrongQuestionController
	mastery       *controller.MasteryController
	review        *controller.ReviewController
	question      *controller.QuestionController
	analysis      *controller.AnalysisController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 热更新配置，逐个触发已注册的回调。
// 端口、数据库连接等启动期配置不在热更新范围内
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Config reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		wrongQuestion: repository.NewWrongQuestionRepository(db),
		mastery:       repository.NewMasteryRecordRepository(db),
		reviewPlan:    repository.NewReviewPlanRepository(db),
		question:      repository.NewQuestionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.wrongQuestion = service.NewWrongQuestionService(repos.wrongQuestion, s.storage)
	s.mastery = service.NewMasteryService(repos.mastery, repos.wrongQuestion)
	s.review = service.NewReviewService(repos.reviewPlan, repos.wrongQuestion)
	s.question = service.NewQuestionService(repos.question, repos.wrongQuestion)
	s.analysis = service.NewAnalysisService(repos.wrongQuestion, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		wrongQuestion: controller.NewWrongQuestionController(s.wrongQuestion),
		mastery:       controller.NewMasteryController(s.mastery),
		review:        controller.NewReviewController(s.review),
		question:      controller.NewQuestionController(s.question),
		analysis:      controller.NewAnalysisController(s.analysis),
		health:        controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 分析缓存可降级，Redis不可用时继续启动
		logger.Log.Warn("Failed to initialize redis, analysis cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("wrongbook-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
