package model

import (
	baseModel "discovery_admin/pkg/model"
)

// 审计动作类型
const (
	ActionEvaluate = "evaluate" // 规则链自动评估
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionFlag     = "flag"
)

// 系统评估动作的操作者标识
const SystemModerator = "system"

// Result 单条规则的评估结果
type Result struct {
	Status   string            `json:"status"`
	Reason   string            `json:"reason,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	// Continue 为 false 时立即终止后续规则，以当前状态为最终结果
	Continue bool `json:"continue"`
}

// ModerationAction 审计记录，append-only
type ModerationAction struct {
	baseModel.BaseModel
	PostID      string `gorm:"index" json:"postId"`
	ModeratorID string `json:"moderatorId"`
	Action      string `json:"action"`
	FromStatus  string `json:"fromStatus"`
	ToStatus    string `json:"toStatus"`
	Reason      string `json:"reason,omitempty"`
	Notes       string `json:"notes,omitempty"`
	RuleName    string `json:"ruleName,omitempty"` // 自动评估时记录命中的规则
}
