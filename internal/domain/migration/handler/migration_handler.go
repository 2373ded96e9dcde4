package handler

import (
	"errors"
	"net/http"
	"strconv"

	"discovery_admin/internal/domain/migration/model"
	"discovery_admin/internal/domain/migration/service"
	"discovery_admin/pkg/response"
	"discovery_admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

type MigrationHandler struct {
	service service.MigrationService
}

func NewMigrationHandler(s service.MigrationService) *MigrationHandler {
	return &MigrationHandler{service: s}
}

// AnalyzeInput 标签分析输入
type AnalyzeInput struct {
	Limit           int  `json:"limit"`
	ExcludeExisting bool `json:"excludeExisting"`
}

// CreateJobInput 创建任务输入
type CreateJobInput struct {
	TagMappings map[string]string `json:"tagMappings" binding:"required"`
	BatchSize   int               `json:"batchSize"`
	Limit       int               `json:"limit"`
	UpdateAll   bool              `json:"updateAll"`
	DryRun      bool              `json:"dryRun"`
}

func (in *CreateJobInput) toConfig() model.MigrationConfig {
	return model.MigrationConfig{
		TagMappings: in.TagMappings,
		BatchSize:   in.BatchSize,
		Limit:       in.Limit,
		UpdateAll:   in.UpdateAll,
		DryRun:      in.DryRun,
	}
}

// Analyze 分析现存标签并给出映射建议
// @Summary 标签分析
// @Tags Migration
// @Accept json
// @Produce json
// @Param input body AnalyzeInput false "采样参数"
// @Success 200 {array} service.TagSuggestion
// @Router /admin/migrations/analyze [post]
func (h *MigrationHandler) Analyze(c *gin.Context) {
	var input AnalyzeInput
	c.ShouldBindJSON(&input)

	suggestions, err := h.service.AnalyzeTags(input.Limit, input.ExcludeExisting)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, suggestions)
}

// Validate 校验配置，不建任务
func (h *MigrationHandler) Validate(c *gin.Context) {
	var input CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.ValidateConfig(input.toConfig())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, result)
}

// CreateJob 创建迁移任务
func (h *MigrationHandler) CreateJob(c *gin.Context) {
	var input CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	job, err := h.service.CreateJob(input.toConfig(), getUserIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			response.Fail(c, response.ErrConfigInvalid, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, job)
}

// StartJob 启动任务，立即返回
func (h *MigrationHandler) StartJob(c *gin.Context) {
	if err := h.service.StartJob(c.Param("id")); err != nil {
		h.jobError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "started"})
}

// PauseJob 请求暂停
func (h *MigrationHandler) PauseJob(c *gin.Context) {
	if err := h.service.PauseJob(c.Param("id")); err != nil {
		h.jobError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "pause requested"})
}

// StopJob 请求停止
func (h *MigrationHandler) StopJob(c *gin.Context) {
	if err := h.service.StopJob(c.Param("id")); err != nil {
		h.jobError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "stop requested"})
}

// GetJob 查询任务状态与进度
func (h *MigrationHandler) GetJob(c *gin.Context) {
	job, err := h.service.GetJob(c.Param("id"))
	if err != nil {
		h.jobError(c, err)
		return
	}
	response.Success(c, job)
}

// ListJobs 任务列表
func (h *MigrationHandler) ListJobs(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	jobs, total, err := h.service.ListJobs(p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  jobs,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// Rollback 回滚已完成的任务
func (h *MigrationHandler) Rollback(c *gin.Context) {
	rollback, err := h.service.Rollback(c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		h.jobError(c, err)
		return
	}
	response.Success(c, rollback)
}

// Cleanup 清理超过保留期的终态任务
func (h *MigrationHandler) Cleanup(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	deleted, err := h.service.Cleanup(days)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// jobError 引擎错误到响应码的映射
func (h *MigrationHandler) jobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		response.Error(c, http.StatusNotFound, response.ErrJobNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrJobNotRunning),
		errors.Is(err, service.ErrRollbackForbidden):
		response.Fail(c, response.ErrJobInvalidState, err.Error())
	case errors.Is(err, service.ErrNothingToRollback):
		response.Fail(c, response.ErrNothingToRollback, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}

func getUserIDFromContext(c *gin.Context) string {
	val, _ := c.Get("userID")
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}
