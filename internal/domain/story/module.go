package story

import (
	"context"
	"time"

	"discovery_admin/internal/domain/story/handler"
	"discovery_admin/internal/domain/story/repository"
	"discovery_admin/internal/domain/story/service"
	"discovery_admin/internal/pkg/config"
	"discovery_admin/internal/pkg/middleware"
	"discovery_admin/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// StoryModule 限时故事模块
type StoryModule struct{}

func init() {
	registry.Register(&StoryModule{})
}

func (m *StoryModule) Name() string {
	return "story"
}

func (m *StoryModule) Priority() int {
	return 30
}

func (m *StoryModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig.Story

	sRepo := repository.NewStoryRepository(ctx.DB)
	sService := service.NewStoryService(sRepo, ctx.Redis, service.Options{
		TTL:        time.Duration(cfg.TTLHours) * time.Hour,
		SweepEvery: time.Duration(cfg.SweepMinutes) * time.Minute,
		CacheTTL:   time.Duration(cfg.CacheSeconds) * time.Second,
	}, ctx.Metrics)
	sHandler := handler.NewStoryHandler(sService)

	// 过期清理随进程生命周期运行
	sService.StartSweeper(context.Background())

	setupRoutes(ctx.Router, sHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.StoryHandler) {
	g := r.Group("/stories")

	// 公开读取
	g.GET("/active", h.GetActive)
	g.GET("/:id", h.GetStory)

	// 需要登录
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", h.CreateStory)
		auth.GET("/mine", h.GetMyStories)
	}
}
