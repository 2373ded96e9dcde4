package handler

import (
	"net/http"

	"discovery_admin/internal/domain/interest/service"
	"discovery_admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type InterestHandler struct {
	service service.InterestService
}

func NewInterestHandler(s service.InterestService) *InterestHandler {
	return &InterestHandler{service: s}
}

// CreateInterestInput 创建兴趣输入
type CreateInterestInput struct {
	Name     string   `json:"name" binding:"required"`
	Slug     string   `json:"slug" binding:"required,lowercase"`
	ParentID *string  `json:"parentId"`
	Keywords []string `json:"keywords"`
}

// UpdateKeywordsInput 更新同义词输入
type UpdateKeywordsInput struct {
	Keywords []string `json:"keywords" binding:"required"`
}

// CreateInterest 创建兴趣节点 (super_admin)
// @Summary 创建兴趣
// @Tags Interest
// @Accept json
// @Produce json
// @Param input body CreateInterestInput true "兴趣"
// @Success 200 {object} model.Interest
// @Router /admin/interests [post]
func (h *InterestHandler) CreateInterest(c *gin.Context) {
	var input CreateInterestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	interest, err := h.service.CreateInterest(input.Name, input.Slug, input.ParentID, input.Keywords)
	if err != nil {
		if err == service.ErrParentNotFound {
			response.Fail(c, response.ErrInterestInvalid, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, interest)
}

// GetInterests 获取全部兴趣（平铺）
func (h *InterestHandler) GetInterests(c *gin.Context) {
	interests, err := h.service.GetAll()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, interests)
}

// GetTree 获取兴趣树
func (h *InterestHandler) GetTree(c *gin.Context) {
	tree, err := h.service.GetTree()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, tree)
}

// GetInterest 获取单个兴趣
func (h *InterestHandler) GetInterest(c *gin.Context) {
	interest, err := h.service.GetInterest(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrInterestNotFound, "interest not found")
		return
	}
	response.Success(c, interest)
}

// GetChildren 获取子节点
func (h *InterestHandler) GetChildren(c *gin.Context) {
	children, err := h.service.GetChildren(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, children)
}

// UpdateKeywords 更新同义词表 (super_admin)
func (h *InterestHandler) UpdateKeywords(c *gin.Context) {
	var input UpdateKeywordsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	interest, err := h.service.UpdateKeywords(c.Param("id"), input.Keywords)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, interest)
}

// DeleteInterest 删除叶子节点 (super_admin)
func (h *InterestHandler) DeleteInterest(c *gin.Context) {
	if err := h.service.DeleteInterest(c.Param("id")); err != nil {
		if err == service.ErrInterestHasChildren {
			response.Fail(c, response.ErrInterestInvalid, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, "success")
}
