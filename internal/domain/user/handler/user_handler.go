package handler

import (
	"net/http"

	"discovery_admin/internal/domain/user/service"
	"discovery_admin/pkg/response"
	"discovery_admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// LoginInput 登录输入
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserInput 创建账号输入
type CreateUserInput struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
	Role     int    `json:"role" binding:"required,oneof=1 2 3"`
}

// UpdateRoleInput 角色调整输入
type UpdateRoleInput struct {
	Role int `json:"role" binding:"required,oneof=1 2 3"`
}

// Login 登录
// @Summary 管理端登录
// @Tags User
// @Accept json
// @Produce json
// @Param input body LoginInput true "账号密码"
// @Success 200 {object} response.Response{data=string} "token"
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	token, err := h.service.Login(input.Username, input.Password)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, err.Error())
		return
	}
	response.Success(c, gin.H{"token": token})
}

// CreateUser 创建账号 (super_admin)
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.CreateUser(input.Username, input.Password, input.Role)
	if err != nil {
		response.Fail(c, response.ErrUserExists, err.Error())
		return
	}
	response.Success(c, user)
}

// GetUsers 获取账号列表
func (h *UserHandler) GetUsers(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	users, total, err := h.service.GetUsers(p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  users,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// GetUser 获取单个账号
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrUserNotFound, "user not found")
		return
	}
	response.Success(c, user)
}

// UpdateRole 调整角色 (super_admin)
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var input UpdateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.UpdateRole(c.Param("id"), input.Role)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, user)
}

// DisableUser 停用账号 (super_admin)
func (h *UserHandler) DisableUser(c *gin.Context) {
	if err := h.service.DisableUser(c.Param("id")); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, "success")
}
