package model

import (
	"math"
	"time"

	baseModel "discovery_admin/pkg/model"
)

// 迁移任务状态机：
// created -> running -> completed | failed | stopped | paused
// paused  -> running | stopped
// completed -> rolled_back（单向，仅通过显式回滚）
// failed / stopped 为终态
const (
	StatusCreated    = "created"
	StatusRunning    = "running"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusStopped    = "stopped"
	StatusPaused     = "paused"
	StatusRolledBack = "rolled_back"
)

// TerminalStatuses 可被保留期清理的终态
var TerminalStatuses = []string{StatusCompleted, StatusFailed, StatusStopped, StatusRolledBack}

// CanTransition 校验状态迁移是否合法
func CanTransition(from, to string) bool {
	switch from {
	case StatusCreated:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed || to == StatusStopped || to == StatusPaused
	case StatusPaused:
		return to == StatusRunning || to == StatusStopped
	case StatusCompleted:
		return to == StatusRolledBack
	}
	return false
}

// MigrationConfig 任务配置快照，创建后不可变
type MigrationConfig struct {
	TagMappings map[string]string `json:"tagMappings"`     // 归一化标签 -> 兴趣标识
	BatchSize   int               `json:"batchSize"`       // 每批文档数
	Limit       int               `json:"limit,omitempty"` // 候选集上限，0 为不限
	UpdateAll   bool              `json:"updateAll"`       // 已有兴趣的帖子也重写
	DryRun      bool              `json:"dryRun"`          // 只统计不写入
}

// Progress 任务进度
// 不变式：Processed <= Total；Migrated + Skipped + Failed <= Processed
type Progress struct {
	Total      int `json:"total"`
	Processed  int `json:"processed"`
	Migrated   int `json:"migrated"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Percentage int `json:"percentage"`
}

// UpdatePercentage 重算百分比，Total 为 0 时恒为 0
func (p *Progress) UpdatePercentage() {
	if p.Total == 0 {
		p.Percentage = 0
		return
	}
	p.Percentage = int(math.Round(float64(p.Processed) / float64(p.Total) * 100))
}

// JobError 错误日志条目，append-only
type JobError struct {
	PostID    string    `json:"postId,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"` // document | system
}

const (
	ErrorTypeDocument = "document"
	ErrorTypeSystem   = "system"
)

// ValidationResult 配置校验结果，errors 非空则拒绝建任务
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// JobMetadata 任务元数据（创建时间在 BaseModel 上）
type JobMetadata struct {
	CreatedBy   string     `json:"createdBy"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	LastBatch   *time.Time `json:"lastBatch,omitempty"`
}

// MigrationJob 迁移任务
type MigrationJob struct {
	baseModel.BaseModel
	Status     string           `gorm:"index" json:"status"`
	Config     MigrationConfig  `gorm:"type:jsonb;serializer:json" json:"config"`
	Progress   Progress         `gorm:"type:jsonb;serializer:json" json:"progress"`
	Metadata   JobMetadata      `gorm:"type:jsonb;serializer:json" json:"metadata"`
	Errors     []JobError       `gorm:"type:jsonb;serializer:json" json:"errors"`
	Validation ValidationResult `gorm:"type:jsonb;serializer:json" json:"validation"`
	RollbackID *string          `json:"rollbackId,omitempty"`
}

// AppendError 追加错误日志
func (j *MigrationJob) AppendError(postID, message, errType string) {
	j.Errors = append(j.Errors, JobError{
		PostID:    postID,
		Message:   message,
		Timestamp: time.Now(),
		Type:      errType,
	})
}

// RollbackJob 回滚任务，引用原迁移任务
type RollbackJob struct {
	baseModel.BaseModel
	MigrationID string     `gorm:"index" json:"migrationId"`
	Status      string     `json:"status"`
	Progress    Progress   `gorm:"type:jsonb;serializer:json" json:"progress"`
	Errors      []JobError `gorm:"type:jsonb;serializer:json" json:"errors"`
	CreatedBy   string     `json:"createdBy"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AppendError 追加错误日志（回滚失败均视为系统级）
func (j *RollbackJob) AppendError(postID, message string) {
	j.Errors = append(j.Errors, JobError{
		PostID:    postID,
		Message:   message,
		Timestamp: time.Now(),
		Type:      ErrorTypeSystem,
	})
}
