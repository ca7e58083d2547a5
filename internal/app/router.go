package app

import (
	"time"

	"exam_site_backend/docs"
	"exam_site_backend/internal/config"
	"exam_site_backend/internal/middleware"
	"exam_site_backend/pkg/monitoring"
	"exam_site_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 每个用户每分钟最多提交次数
const submitsPerMinute = 10

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	a.registerExamRoutes(authGroup, c)

	// 3. 管理员
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/exams", c.exam.ListExams)
		public.GET("/exams/:examId", c.exam.Setup)
	}
}

func (a *App) registerExamRoutes(group *gin.RouterGroup, c *controllers) {
	submitLimiter := security.NewLimiter(submitsPerMinute, time.Minute)
	go submitLimiter.RunCleanup(a.ctx)

	group.GET("/profile", c.auth.Me)
	group.GET("/profile/attempts", c.attempt.History)

	exams := group.Group("/exams/:examId")
	{
		exams.GET("/take", c.exam.Take)
		exams.POST("/save", submitLimiter.Middleware(security.ByUser), c.attempt.Save)
		exams.GET("/results/:uniqueId", c.attempt.Results)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.AdminOnly())
	{
		admin.POST("/exams/upload", c.adminExam.Upload)
	}
}
