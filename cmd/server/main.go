package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discovery_admin/internal/pkg/config"
	"discovery_admin/internal/pkg/middleware"
	"discovery_admin/internal/pkg/registry"
	"discovery_admin/pkg/database"
	"discovery_admin/pkg/logger"
	"discovery_admin/pkg/metrics"

	// 模块通过 init() 自注册
	_ "discovery_admin/internal/domain/interest"
	_ "discovery_admin/internal/domain/migration"
	_ "discovery_admin/internal/domain/moderation"
	_ "discovery_admin/internal/domain/post"
	_ "discovery_admin/internal/domain/story"
	_ "discovery_admin/internal/domain/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger.Init(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	db := database.InitDatabase()
	rdb := database.InitRedis()
	collector := metrics.NewCollector()

	gin.SetMode(config.GlobalConfig.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.MetricsMiddleware(collector))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	moduleCtx := &registry.ModuleContext{
		DB:      db,
		Redis:   rdb,
		Router:  router,
		Metrics: collector,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("module initialization failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("port", config.GlobalConfig.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	// 优雅退出：等待进行中的请求完成
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}
}
