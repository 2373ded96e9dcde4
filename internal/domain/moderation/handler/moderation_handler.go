package handler

import (
	"net/http"
	"strconv"

	"discovery_admin/internal/domain/moderation/service"
	"discovery_admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	service service.ModerationService
}

func NewModerationHandler(s service.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: s}
}

// OverrideInput 管理员覆盖输入
type OverrideInput struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// ApprovePost 通过帖子
// @Summary 审核通过
// @Tags Moderation
// @Param id path string true "帖子ID"
// @Param input body OverrideInput false "原因与备注"
// @Success 200 {string} string "success"
// @Router /admin/moderation/{id}/approve [put]
func (h *ModerationHandler) ApprovePost(c *gin.Context) {
	h.applyOverride(c, h.service.ApprovePost)
}

// RejectPost 拒绝帖子
func (h *ModerationHandler) RejectPost(c *gin.Context) {
	h.applyOverride(c, h.service.RejectPost)
}

// FlagPost 标记帖子待复核
func (h *ModerationHandler) FlagPost(c *gin.Context) {
	h.applyOverride(c, h.service.FlagPost)
}

func (h *ModerationHandler) applyOverride(c *gin.Context, fn func(postID, moderatorID, reason, notes string) error) {
	var input OverrideInput
	c.ShouldBindJSON(&input) // body 可为空

	moderatorID := getUserIDFromContext(c)
	if err := fn(c.Param("id"), moderatorID, input.Reason, input.Notes); err != nil {
		if err == service.ErrPostNotFound {
			response.Error(c, http.StatusNotFound, response.ErrPostNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, "success")
}

// GetHistory 获取帖子的审计记录
func (h *ModerationHandler) GetHistory(c *gin.Context) {
	actions, err := h.service.GetModerationHistory(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, actions)
}

// GetPending 获取待审核帖子
// @Summary 待审核队列
// @Tags Moderation
// @Param limit query int false "Limit"
// @Success 200 {array} model.Post
// @Router /admin/moderation/pending [get]
func (h *ModerationHandler) GetPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	posts, err := h.service.GetPendingPosts(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, posts)
}

// GetFlagged 获取被标记帖子
func (h *ModerationHandler) GetFlagged(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	posts, err := h.service.GetFlaggedPosts(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, posts)
}

// GetStats 审核队列统计
func (h *ModerationHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetQueueStats()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, stats)
}

func getUserIDFromContext(c *gin.Context) string {
	val, _ := c.Get("userID")
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}
