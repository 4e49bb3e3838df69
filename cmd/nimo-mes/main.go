package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/nimo-mes/internal/config"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	mesHandler "github.com/bitfantasy/nimo-mes/internal/mes/handler"
	mesRepo "github.com/bitfantasy/nimo-mes/internal/mes/repository"
	mesService "github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting nimo-mes service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// AutoMigrate MES tables
	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate MES tables", zap.Error(err))
	}
	zapLogger.Info("MES database migration completed")

	// Redis 用于BOM成本缓存，连不上也不阻塞启动
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, BOM cost cache disabled", zap.Error(err))
		rdb = nil
	}

	// 初始化 MES 依赖
	repos := mesRepo.NewRepositories(db)
	services := mesService.NewServices(repos, db, rdb)
	handlers := mesHandler.NewHandlers(services)

	// 确定端口
	port := os.Getenv("MES_PORT")
	if port == "" {
		port = "8082"
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 健康检查
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nimo-mes"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nimo-mes"})
	})

	// 版本信息
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "nimo-mes",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// MES API v1
	v1 := router.Group("/api/v1/mes")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 产品主数据
		products := v1.Group("/products")
		{
			products.GET("", handlers.Product.List)
			products.POST("", handlers.Product.Create)
			products.GET("/:id", handlers.Product.Get)
			products.PUT("/:id", handlers.Product.Update)
			products.DELETE("/:id", handlers.Product.Delete)
		}

		// BOM
		boms := v1.Group("/boms")
		{
			boms.GET("", handlers.BOM.List)
			boms.POST("", handlers.BOM.Create)
			boms.GET("/:id", handlers.BOM.Get)
			boms.PUT("/:id", handlers.BOM.Update)
			boms.DELETE("/:id", handlers.BOM.Delete)
			boms.POST("/:id/toggle-active", handlers.BOM.ToggleActive)
			boms.GET("/:id/cost", handlers.BOM.Cost)
		}
		v1.GET("/components/:componentId/usage", handlers.BOM.Usage)

		// 制造订单
		mos := v1.Group("/manufacturing-orders")
		{
			mos.GET("", handlers.Manufacturing.List)
			mos.POST("", handlers.Manufacturing.Create)
			mos.GET("/:id", handlers.Manufacturing.Get)
			mos.PUT("/:id", handlers.Manufacturing.Update)
			mos.DELETE("/:id", handlers.Manufacturing.Delete)
			mos.POST("/:id/start", handlers.Manufacturing.Start)
			mos.POST("/:id/complete", handlers.Manufacturing.Complete)
			mos.POST("/:id/cancel", handlers.Manufacturing.Cancel)
		}

		// 工单
		workOrders := v1.Group("/work-orders")
		{
			workOrders.GET("", handlers.WorkOrder.List)
			workOrders.GET("/:id", handlers.WorkOrder.Get)
			workOrders.DELETE("/:id", handlers.WorkOrder.Delete)
			workOrders.POST("/:id/start", handlers.WorkOrder.Start)
			workOrders.POST("/:id/pause", handlers.WorkOrder.Pause)
			workOrders.POST("/:id/complete", handlers.WorkOrder.Complete)
			workOrders.POST("/:id/cancel", handlers.WorkOrder.Cancel)
		}

		// 工作中心
		workCenters := v1.Group("/work-centers")
		{
			workCenters.GET("", handlers.WorkCenter.List)
			workCenters.POST("", handlers.WorkCenter.Create)
			workCenters.GET("/:id", handlers.WorkCenter.Get)
			workCenters.PUT("/:id", handlers.WorkCenter.Update)
			workCenters.DELETE("/:id", handlers.WorkCenter.Delete)
		}

		// 仓库与库存
		warehouses := v1.Group("/warehouses")
		{
			warehouses.GET("", handlers.Inventory.ListWarehouses)
			warehouses.POST("", handlers.Inventory.CreateWarehouse)
			warehouses.GET("/:id", handlers.Inventory.GetWarehouse)
		}
		inventory := v1.Group("/inventory")
		{
			inventory.GET("", handlers.Inventory.List)
			inventory.POST("/adjust", handlers.Inventory.Adjust)
			inventory.POST("/transfer", handlers.Inventory.Transfer)
			inventory.GET("/transactions", handlers.Inventory.Transactions)
			inventory.GET("/export", handlers.Inventory.Export)
		}
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("MES Server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down MES server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("MES Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode,
	)
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return db, nil
}
