package model

import (
	baseModel "discovery_admin/pkg/model"
)

// Interest 兴趣分类树节点
// 不变式：非根节点 Path == parent.Path + [self.ID]，Level == len(Path) - 1
type Interest struct {
	baseModel.BaseModel
	Name      string               `gorm:"unique" json:"name"`
	Slug      string               `gorm:"unique" json:"slug"`
	Level     int                  `json:"level"` // 0 = 根节点
	Path      baseModel.StringList `gorm:"type:jsonb;serializer:json" json:"path"`
	ParentID  *string              `gorm:"index" json:"parentId,omitempty"`
	Keywords  baseModel.StringList `gorm:"type:jsonb;serializer:json" json:"keywords"` // 用于标签匹配的同义词
	PostCount int64                `gorm:"default:0" json:"postCount"`                 // 反规范化计数
}

// IsRoot 是否为根节点
func (i *Interest) IsRoot() bool {
	return i.ParentID == nil
}

// ValidHierarchy 校验 Path/Level 不变式
func (i *Interest) ValidHierarchy(parent *Interest) bool {
	if i.Level != len(i.Path)-1 {
		return false
	}
	if parent == nil {
		return i.ParentID == nil && i.Level == 0 && len(i.Path) == 1 && i.Path[0] == i.ID
	}
	if i.ParentID == nil || *i.ParentID != parent.ID {
		return false
	}
	if len(i.Path) != len(parent.Path)+1 {
		return false
	}
	for idx, p := range parent.Path {
		if i.Path[idx] != p {
			return false
		}
	}
	return i.Path[len(i.Path)-1] == i.ID
}
