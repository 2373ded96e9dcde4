package model

import (
	"time"

	baseModel "discovery_admin/pkg/model"
)

// Story 限时故事，到期后由后台清理任务删除
type Story struct {
	baseModel.BaseModel
	UserID    string    `gorm:"index" json:"userId"`
	MediaURL  string    `json:"mediaUrl"`
	Caption   string    `json:"caption"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
}

// Active 是否仍在存活期内
func (s *Story) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Remaining 剩余存活时间，已过期返回 0
func (s *Story) Remaining(now time.Time) time.Duration {
	if !s.Active(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
