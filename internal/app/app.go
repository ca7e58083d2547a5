package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"exam_site_backend/internal/config"
	"exam_site_backend/internal/controller"
	"exam_site_backend/internal/repository"
	"exam_site_backend/internal/service"
	"exam_site_backend/internal/util"
	"exam_site_backend/pkg/configwatcher"
	"exam_site_backend/pkg/database"
	"exam_site_backend/pkg/logger"
	"exam_site_backend/pkg/monitoring"
	"exam_site_backend/pkg/security"
	"exam_site_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	defaultQuantity atomic.Int64
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	exam    *repository.ExamRepository
	attempt *repository.AttemptRepository
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	catalog  *service.ExamCatalogService
	sampler  *service.QuestionSamplerService
	attempt  *service.AttemptService
	importer *service.ExamImportService
}

type controllers struct {
	auth      *controller.AuthController
	exam      *controller.ExamController
	attempt   *controller.AttemptController
	adminExam *controller.AdminExamController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// DefaultQuantity 未指定题量时使用的默认值，随配置热加载更新
func (a *App) DefaultQuantity() service.Quantity {
	return service.Quantity(a.defaultQuantity.Load())
}

func (a *App) setDefaultQuantity(raw string) {
	q, err := service.ParseQuantity(raw)
	if err != nil {
		logger.Log.Warn("invalid exam.default_quantity, using all", zap.String("value", raw))
		q = service.AllQuestions
	}
	a.defaultQuantity.Store(int64(q))
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		exam:    repository.NewExamRepository(db),
		attempt: repository.NewAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	var guard service.SubmissionGuard
	if rdb != nil {
		guard = service.NewRedisSubmissionGuard(rdb, cfg.Exam.SubmitLock())
	} else {
		guard = service.NewLocalSubmissionGuard()
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.sampler = service.NewQuestionSamplerService(repos.exam)
	s.catalog = service.NewExamCatalogService(repos.exam, repos.exam, a.DefaultQuantity)
	s.attempt = service.NewAttemptService(repos.exam, repos.attempt, repos.user, guard)
	s.importer = service.NewExamImportService(repos.exam, s.storage)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		exam:      controller.NewExamController(s.catalog, s.sampler),
		attempt:   controller.NewAttemptController(s.attempt),
		adminExam: controller.NewAdminExamController(s.importer),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式下默认不自动迁移，需 -migrate 显式开启
	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		ctx:    ctx,
		cancel: cancel,
	}
	app.setDefaultQuantity(cfg.Exam.DefaultQuantity)

	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, submissions are serialised in-process only", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, app.Redis)
	controllers := app.initControllers(app.services, db, app.Redis)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("exam-site", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(logger.SetLevel)
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.setDefaultQuantity(newCfg.Exam.DefaultQuantity)
	})

	return app
}

// ImportExamFile 从本地文件导入试卷
func (a *App) ImportExamFile(ctx context.Context, path, title, source string) error {
	if a.services == nil {
		return errors.New("application services are not initialised")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	exam, err := a.services.importer.Import(ctx, service.ImportRequest{
		Title:    title,
		Source:   source,
		Filename: filepath.Base(path),
		Data:     data,
	})
	if err != nil {
		return err
	}
	logger.Log.Info("exam file imported", zap.String("file", path), zap.Uint("exam_id", exam.ID))
	return nil
}

func (a *App) watchConfig() {
	if a.Config.FilePath == "" {
		return
	}
	err := configwatcher.Watch(a.ctx, a.Config.FilePath, func(newCfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(newCfg)
		}
	})
	if err != nil {
		logger.Log.Error("Config watcher stopped", zap.Error(err))
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go a.watchConfig()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 释放后台任务和外部连接
func (a *App) Close(ctx context.Context) {
	a.cancel()
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
