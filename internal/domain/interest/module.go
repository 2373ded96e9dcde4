package interest

import (
	"discovery_admin/internal/domain/interest/handler"
	"discovery_admin/internal/domain/interest/repository"
	"discovery_admin/internal/domain/interest/service"
	"discovery_admin/internal/pkg/middleware"
	"discovery_admin/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// InterestModule 兴趣分类模块
type InterestModule struct{}

func init() {
	registry.Register(&InterestModule{})
}

func (m *InterestModule) Name() string {
	return "interest"
}

func (m *InterestModule) Priority() int {
	// 先于 migration 模块：迁移校验依赖兴趣集合
	return 5
}

func (m *InterestModule) Init(ctx *registry.ModuleContext) error {
	iRepo := repository.NewInterestRepository(ctx.DB)
	iService := service.NewInterestService(iRepo)
	iHandler := handler.NewInterestHandler(iService)

	setupRoutes(ctx.Router, iHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.InterestHandler) {
	// 读取接口对登录用户开放
	g := r.Group("/interests")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.GetInterests)
		g.GET("/tree", h.GetTree)
		g.GET("/:id", h.GetInterest)
		g.GET("/:id/children", h.GetChildren)
	}

	// 写接口仅超级管理员
	admin := r.Group("/admin/interests")
	admin.Use(middleware.AuthMiddleware(), middleware.SuperAdminMiddleware())
	{
		admin.POST("", h.CreateInterest)
		admin.PUT("/:id/keywords", h.UpdateKeywords)
		admin.DELETE("/:id", h.DeleteInterest)
	}
}
