package migration

import (
	"time"

	interestRepo "discovery_admin/internal/domain/interest/repository"
	"discovery_admin/internal/domain/migration/handler"
	"discovery_admin/internal/domain/migration/repository"
	"discovery_admin/internal/domain/migration/service"
	"discovery_admin/internal/pkg/config"
	"discovery_admin/internal/pkg/middleware"
	"discovery_admin/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// MigrationModule 标签迁移模块
type MigrationModule struct{}

func init() {
	registry.Register(&MigrationModule{})
}

func (m *MigrationModule) Name() string {
	return "migration"
}

func (m *MigrationModule) Priority() int {
	// 晚于 interest 模块：分类字典来自兴趣层级
	return 15
}

func (m *MigrationModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig.Migration

	mRepo := repository.NewMigrationRepository(ctx.DB)
	iRepo := interestRepo.NewInterestRepository(ctx.DB)
	taxonomy := &interestTaxonomy{repo: iRepo}

	// 兴趣仓储同时承担冗余帖子计数的增减
	mService := service.NewMigrationService(mRepo, taxonomy, iRepo, service.Options{
		DefaultBatchSize: cfg.DefaultBatchSize,
		MaxWriteBatch:    cfg.MaxWriteBatch,
		BatchDelay:       time.Duration(cfg.BatchDelayMs) * time.Millisecond,
	}, ctx.Metrics)
	mHandler := handler.NewMigrationHandler(mService)

	setupRoutes(ctx.Router, mHandler)

	return nil
}

// interestTaxonomy 以兴趣表为映射字典
type interestTaxonomy struct {
	repo interestRepo.InterestRepository
}

func (t *interestTaxonomy) Entries() ([]service.TaxonomyEntry, error) {
	interests, err := t.repo.GetAll()
	if err != nil {
		return nil, err
	}

	entries := make([]service.TaxonomyEntry, 0, len(interests))
	for _, it := range interests {
		entries = append(entries, service.TaxonomyEntry{
			Slug:     it.Slug,
			Name:     it.Name,
			Keywords: it.Keywords,
		})
	}
	return entries, nil
}

func setupRoutes(r *gin.Engine, h *handler.MigrationHandler) {
	g := r.Group("/admin/migrations")
	g.Use(middleware.AuthMiddleware())

	// 状态查询对所有管理角色只读开放
	read := g.Group("", middleware.ViewerMiddleware())
	{
		read.GET("", h.ListJobs)
		read.GET("/:id", h.GetJob)
	}

	// 写操作仅超级管理员
	admin := g.Group("", middleware.SuperAdminMiddleware())
	{
		admin.POST("/analyze", h.Analyze)
		admin.POST("/validate", h.Validate)
		admin.POST("", h.CreateJob)
		admin.DELETE("/cleanup", h.Cleanup)
		admin.POST("/:id/start", h.StartJob)
		admin.POST("/:id/pause", h.PauseJob)
		admin.POST("/:id/stop", h.StopJob)
		admin.POST("/:id/rollback", h.Rollback)
	}
}
