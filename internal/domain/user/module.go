package user

import (
	"discovery_admin/internal/domain/user/handler"
	"discovery_admin/internal/domain/user/repository"
	"discovery_admin/internal/domain/user/service"
	"discovery_admin/internal/pkg/middleware"
	"discovery_admin/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 管理端账号模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 账号模块优先级最高，其他模块的路由依赖鉴权
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewUserService(userRepo)
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.Router, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	// 公开路由
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
	}

	// 账号管理，仅超级管理员
	userGroup := r.Group("/admin/users")
	userGroup.Use(middleware.AuthMiddleware(), middleware.SuperAdminMiddleware())
	{
		userGroup.POST("", h.CreateUser)
		userGroup.GET("", h.GetUsers)
		userGroup.GET("/:id", h.GetUser)
		userGroup.PUT("/:id/role", h.UpdateRole)
		userGroup.DELETE("/:id", h.DisableUser)
	}
}
