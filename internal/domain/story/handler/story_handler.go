package handler

import (
	"errors"
	"net/http"
	"strconv"

	"discovery_admin/internal/domain/story/service"
	"discovery_admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	service service.StoryService
}

func NewStoryHandler(s service.StoryService) *StoryHandler {
	return &StoryHandler{service: s}
}

// CreateStoryInput 发布故事输入
type CreateStoryInput struct {
	MediaURL string `json:"mediaUrl" binding:"required"`
	Caption  string `json:"caption"`
}

// CreateStory 发布故事
// @Summary 发布故事
// @Tags Story
// @Accept json
// @Produce json
// @Param input body CreateStoryInput true "故事内容"
// @Success 200 {object} model.Story
// @Router /stories [post]
func (h *StoryHandler) CreateStory(c *gin.Context) {
	var input CreateStoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	story, err := h.service.CreateStory(getUserIDFromContext(c), input.MediaURL, input.Caption)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, story)
}

// GetStory 读取单个故事，同时累加浏览数
func (h *StoryHandler) GetStory(c *gin.Context) {
	story, views, err := h.service.GetStory(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStoryNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrStoryNotFound, "story not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"story": story, "views": views})
}

// GetActive 活跃故事列表
func (h *StoryHandler) GetActive(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	stories, err := h.service.GetActiveStories(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, stories)
}

// GetMyStories 当前用户的活跃故事
func (h *StoryHandler) GetMyStories(c *gin.Context) {
	stories, err := h.service.GetUserStories(getUserIDFromContext(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, stories)
}

func getUserIDFromContext(c *gin.Context) string {
	val, _ := c.Get("userID")
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}
