package model

import (
	baseModel "discovery_admin/pkg/model"
)

// 管理端角色，数值越大权限越高
const (
	RoleViewer     = 1 // 只读
	RoleModerator  = 2 // 可审核内容
	RoleSuperAdmin = 3 // 可执行迁移/回滚/清理
)

// 账号状态
const (
	StatusNormal   = 1
	StatusDisabled = 2
)

// User 管理端账号模型
type User struct {
	baseModel.BaseModel
	Username string `gorm:"unique" json:"username"`
	Password string `json:"-"` // bcrypt 哈希，不返回给前端
	Role     int    `gorm:"default:1" json:"role"`
	Status   int    `gorm:"default:1" json:"status"`
}

// RoleName 角色可读名称，用于审计日志
func (u *User) RoleName() string {
	switch u.Role {
	case RoleSuperAdmin:
		return "super_admin"
	case RoleModerator:
		return "moderator"
	default:
		return "viewer"
	}
}
