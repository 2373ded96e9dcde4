package model

import (
	"time"

	baseModel "discovery_admin/pkg/model"
)

// 帖子审核状态机：
// pending -> approved | rejected | flagged
// flagged -> approved | rejected （复审）
// approved / rejected 为终态，仅管理员覆盖可再变更
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusFlagged  = "flagged"
)

// Post 帖子模型
// Tags / Categories 为历史遗留的自由文本标签，InterestIDs 为迁移后的结构化兴趣
type Post struct {
	baseModel.BaseModel
	UserID      string               `json:"userId"`
	Content     string               `json:"content"`
	MediaURLs   baseModel.StringList `gorm:"type:jsonb;serializer:json" json:"mediaUrls"`
	Tags        baseModel.StringList `gorm:"type:jsonb;serializer:json" json:"tags"`
	Categories  baseModel.StringList `gorm:"type:jsonb;serializer:json" json:"categories"`
	InterestIDs baseModel.StringList `gorm:"column:interest_ids;type:jsonb;serializer:json" json:"interestIds"`
	Status      string               `gorm:"default:'pending';index" json:"status"`

	// 迁移引擎写入的标记字段
	MigratedAt   *time.Time `json:"migratedAt,omitempty"`
	MigrationID  *string    `gorm:"index" json:"migrationId,omitempty"`
	RollbackID   *string    `json:"rollbackId,omitempty"`
	RolledBackAt *time.Time `json:"rolledBackAt,omitempty"`
}

// NeedsMigration 帖子是否还没有结构化兴趣
func (p *Post) NeedsMigration() bool {
	return len(p.InterestIDs) == 0
}

// LegacyTags 历史标签与分类的合并去重结果（保持出现顺序）
func (p *Post) LegacyTags() []string {
	seen := make(map[string]struct{}, len(p.Tags)+len(p.Categories))
	out := make([]string, 0, len(p.Tags)+len(p.Categories))
	for _, t := range append(append([]string{}, p.Tags...), p.Categories...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ValidTransition 校验状态迁移是否合法
// override 表示管理员显式覆盖，可以离开终态
func ValidTransition(from, to string, override bool) bool {
	if from == to {
		// 幂等写入允许（仍会记审计）
		return override
	}
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusFlagged
	case StatusFlagged:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved, StatusRejected:
		return override
	}
	return false
}
