package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/config"
	"rubrics_backend/internal/controller"
	"rubrics_backend/internal/rbac"
	"rubrics_backend/internal/repository"
	"rubrics_backend/internal/service"
	"rubrics_backend/pkg/configwatcher"
	"rubrics_backend/pkg/database"
	"rubrics_backend/pkg/logger"
	"rubrics_backend/pkg/monitoring"
	"rubrics_backend/pkg/security"
	"rubrics_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *gorm.DB
	Redis   *redis.Client
	Catalog *catalog.Catalog
	// ConfigDir 非空时监听其中的 config.yaml 并热更新
	ConfigDir string

	checker         *rbac.Checker
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	catalog    *repository.CatalogRepository
	definition *repository.DefinitionRepository
	instance   *repository.InstanceRepository
	evaluation *repository.EvaluationRepository
	lock       *repository.InstanceLock
}

type services struct {
	defaults   *service.GradingDefaults
	auth       *service.AuthService
	user       *service.UserService
	course     *service.CourseService
	definition *service.DefinitionService
	grading    *service.GradingService
	report     *service.ReportService
}

type controllers struct {
	auth    *controller.AuthController
	health  *controller.HealthController
	rubric  *controller.RubricController
	grading *controller.GradingController
	report  *controller.ReportController
	admin   *controller.AdminController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		catalog:    repository.NewCatalogRepository(db),
		definition: repository.NewDefinitionRepository(db),
		instance:   repository.NewInstanceRepository(db),
		evaluation: repository.NewEvaluationRepository(db),
		lock:       repository.NewInstanceLock(rdb, cfg.Redis.KeyPrefix, cfg.Grading.LockTTL()),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.defaults = service.NewGradingDefaults(cfg.Grading)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.course = service.NewCourseService(repos.course)
	s.definition = service.NewDefinitionService(repos.definition, repos.course, a.Catalog, s.defaults)
	s.grading = service.NewGradingService(
		db,
		repos.definition,
		repos.instance,
		repos.evaluation,
		repos.course,
		a.Catalog,
		repos.lock,
		a.checker,
	)
	s.report = service.NewReportService(repos.evaluation, a.Catalog)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		health:  controller.NewHealthController(db, a.Catalog),
		rubric:  controller.NewRubricController(s.definition, a.Catalog, s.defaults),
		grading: controller.NewGradingController(s.grading, s.defaults, a.checker),
		report:  controller.NewReportController(s.report, s.defaults),
		admin:   controller.NewAdminController(s.user, s.course),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute, security.ClientIP))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 初始化日志、数据库和 Redis，失败时直接退出
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	// release 模式下仅在显式要求时迁移
	migrate := cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app, err := NewWithDeps(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}
	return app
}

// NewWithDeps 使用已建立的连接组装应用，rdb 可以为 nil
func NewWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	outcomes, err := repository.NewCatalogRepository(db).LoadOutcomes()
	if err != nil {
		return nil, fmt.Errorf("load student outcome catalog: %w", err)
	}

	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Catalog: catalog.New(outcomes),
		checker: rbac.NewChecker(nil),
	}
	nOutcomes, nIndicators, nLevels := app.Catalog.Counts()
	logger.Log.Info("Student outcome catalog loaded",
		zap.Int("outcomes", nOutcomes),
		zap.Int("indicators", nIndicators),
		zap.Int("levels", nLevels))

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services, db)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.defaults.Set(newCfg.Grading)
		logger.Log.Info("Grading defaults updated",
			zap.Float64("gradeMin", newCfg.Grading.GradeMin),
			zap.Float64("gradeMax", newCfg.Grading.GradeMax),
			zap.String("defaultLang", newCfg.Grading.DefaultLang))
	})

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app, nil
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if a.ConfigDir != "" {
		go func() {
			if err := configwatcher.WatchConfig(watchCtx, a.ConfigDir, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
