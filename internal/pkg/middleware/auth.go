package middleware

import (
	"net/http"
	"strings"

	"discovery_admin/internal/domain/user/model"
	"discovery_admin/pkg/response"
	"discovery_admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		// 将 userID 和 role 存入上下文
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole 角色权限中间件
// minRole 为允许访问的最低角色（viewer < moderator < super_admin）
func RequireRole(minRole int) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "Unauthorized")
			c.Abort()
			return
		}

		roleInt, ok := role.(int)
		if !ok {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Invalid role format")
			c.Abort()
			return
		}

		if roleInt < minRole {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Insufficient permission")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ViewerMiddleware 任意已登录管理角色，只读接口用
func ViewerMiddleware() gin.HandlerFunc {
	return RequireRole(model.RoleViewer)
}

// ModeratorMiddleware 审核员及以上
func ModeratorMiddleware() gin.HandlerFunc {
	return RequireRole(model.RoleModerator)
}

// SuperAdminMiddleware 仅超级管理员
func SuperAdminMiddleware() gin.HandlerFunc {
	return RequireRole(model.RoleSuperAdmin)
}
