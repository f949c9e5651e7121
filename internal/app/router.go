package app

import (
	"time"

	"rubrics_backend/docs"
	"rubrics_backend/internal/config"
	"rubrics_backend/internal/middleware"
	"rubrics_backend/internal/model"
	"rubrics_backend/internal/rbac"
	"rubrics_backend/pkg/monitoring"
	"rubrics_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/me", c.auth.Me)

		// 报表接口
		a.registerReportRoutes(authGroup, c)

		// 评分表配置
		a.registerRubricRoutes(authGroup, c)

		// 评分
		a.registerGradingRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	loginLimiter := security.RateLimiter(cfg.RateLimit.LoginAttempts,
		time.Duration(cfg.RateLimit.LoginWindowMinutes)*time.Minute, security.ClientIP)

	public := router.Group("/api")
	{
		public.POST("/login", loginLimiter, c.auth.Login)
		public.GET("/health", c.health.HealthCheck)
	}
}

func (a *App) registerReportRoutes(group *gin.RouterGroup, c *controllers) {
	reports := group.Group("")
	reports.Use(middleware.PermissionMiddleware(a.checker, rbac.PermViewAll))
	{
		reports.GET("/student-outcomes", c.report.GetStudentOutcomes)
		reports.GET("/evaluations", c.report.GetEvaluations)
	}
}

func (a *App) registerRubricRoutes(group *gin.RouterGroup, c *controllers) {
	manage := group.Group("")
	manage.Use(middleware.PermissionMiddleware(a.checker, rbac.PermManage))
	{
		manage.GET("/rubrics/options", c.rubric.Options)
		manage.PUT("/areas/:areaId/definition", c.rubric.ConfigureDefinition)
		manage.GET("/areas/:areaId/definition", c.rubric.GetDefinition)
		manage.DELETE("/areas/:areaId/definition", c.rubric.DeleteDefinition)
	}
}

func (a *App) registerGradingRoutes(group *gin.RouterGroup, c *controllers) {
	grade := group.Group("")
	grade.Use(middleware.PermissionMiddleware(a.checker, rbac.PermGrade))
	{
		grade.POST("/definitions/:id/instances", c.grading.OpenInstance)
		grade.GET("/instances/:id", c.grading.GetInstance)
		grade.PUT("/instances/:id/evaluations", c.grading.SaveEvaluations)
		grade.DELETE("/instances/:id/evaluations", c.grading.ClearEvaluations)
		grade.GET("/instances/:id/grade", c.grading.GetGrade)
	}

	group.GET("/definitions/:id/result",
		middleware.PermissionMiddleware(a.checker, rbac.PermViewOwn),
		c.grading.StudentResult)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/users", c.admin.CreateUser)
		admin.POST("/courses", c.admin.CreateCourse)
		admin.POST("/areas", c.admin.CreateArea)
	}
}
