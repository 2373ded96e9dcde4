package moderation

import (
	"discovery_admin/internal/domain/moderation/handler"
	"discovery_admin/internal/domain/moderation/repository"
	"discovery_admin/internal/domain/moderation/rule"
	"discovery_admin/internal/domain/moderation/service"
	"discovery_admin/internal/pkg/config"
	"discovery_admin/internal/pkg/middleware"
	"discovery_admin/internal/pkg/registry"
	"discovery_admin/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

// ModerationModule 审核模块
type ModerationModule struct{}

func init() {
	registry.Register(&ModerationModule{})
}

func (m *ModerationModule) Name() string {
	return "moderation"
}

func (m *ModerationModule) Priority() int {
	// 先于 post 模块初始化：post 发布依赖这里注入的评估池
	return 10
}

func (m *ModerationModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig.Moderation

	// 1. 依赖注入
	mRepo := repository.NewModerationRepository(ctx.DB)
	engine := service.NewEngine(rule.DefaultRegistry(), cfg.DefaultStatus, cfg.FailurePolicy, ctx.Metrics)
	mService := service.NewModerationService(mRepo, engine, ctx.Redis)
	mHandler := handler.NewModerationHandler(mService)

	// 2. 启动异步评估池，通过模块上下文交给 post 模块
	pool := worker.NewPool(func(postID string) error {
		_, err := mService.EvaluatePost(postID)
		return err
	}, cfg.WorkerNum, cfg.QueueSize)
	pool.Start()
	ctx.EvalPool = pool

	// 3. 路由注册
	setupRoutes(ctx.Router, mHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ModerationHandler) {
	g := r.Group("/admin/moderation")
	g.Use(middleware.AuthMiddleware(), middleware.ModeratorMiddleware())
	{
		g.GET("/pending", h.GetPending)
		g.GET("/flagged", h.GetFlagged)
		g.GET("/stats", h.GetStats)
		g.GET("/:id/history", h.GetHistory)
		g.PUT("/:id/approve", h.ApprovePost)
		g.PUT("/:id/reject", h.RejectPost)
		g.PUT("/:id/flag", h.FlagPost)
	}
}
