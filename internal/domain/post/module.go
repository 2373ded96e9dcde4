package post

import (
	"discovery_admin/internal/domain/post/handler"
	"discovery_admin/internal/domain/post/repository"
	"discovery_admin/internal/domain/post/service"
	"discovery_admin/internal/pkg/middleware"
	"discovery_admin/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PostModule 帖子模块
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	// 在 moderation 模块之后初始化，依赖其注入的评估池
	return 20
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	pRepo := repository.NewPostRepository(ctx.DB)
	pService := service.NewPostService(pRepo, ctx.EvalPool)
	pHandler := handler.NewPostHandler(pService)

	setupRoutes(ctx.Router, pHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler) {
	g := r.Group("/posts")

	// 公开帖子流
	g.GET("/feed", h.GetFeed)
	g.GET("/:id", h.GetPost)

	// 需要登录
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", h.CreatePost)
		auth.GET("/mine", h.GetMyPosts)
	}
}
