package handler

import (
	"net/http"

	"discovery_admin/internal/domain/post/service"
	"discovery_admin/pkg/response"
	"discovery_admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	service service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{service: s}
}

// CreatePostInput 发布帖子输入
type CreatePostInput struct {
	Content    string   `json:"content" binding:"required"`
	MediaURLs  []string `json:"mediaUrls"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

// CreatePost 发布帖子
// @Summary 发布帖子
// @Tags Post
// @Accept json
// @Produce json
// @Param input body CreatePostInput true "帖子内容"
// @Success 200 {object} model.Post
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := getUserIDFromContext(c)
	post, err := h.service.CreatePost(userID, input.Content, input.MediaURLs, input.Tags, input.Categories)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, post)
}

// GetPost 获取单个帖子
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.service.GetPost(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrPostNotFound, "post not found")
		return
	}
	response.Success(c, post)
}

// GetFeed 获取已通过审核的帖子流
// @Summary 获取帖子流
// @Tags Post
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /posts/feed [get]
func (h *PostHandler) GetFeed(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	posts, total, err := h.service.GetFeed(p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  posts,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// GetMyPosts 获取当前用户的帖子
func (h *PostHandler) GetMyPosts(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	posts, total, err := h.service.GetUserPosts(getUserIDFromContext(c), p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  posts,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

func getUserIDFromContext(c *gin.Context) string {
	val, _ := c.Get("userID")
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}
