package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	moderationModel "discovery_admin/internal/domain/moderation/model"
	"discovery_admin/internal/domain/moderation/repository"
	postModel "discovery_admin/internal/domain/post/model"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidTransition = errors.New("invalid moderation status transition")
	ErrPostNotFound      = errors.New("post not found")
)

// QueueStats 审核队列统计
type QueueStats struct {
	Pending int64 `json:"pending"`
	Flagged int64 `json:"flagged"`
}

// ModerationService 审核服务：规则评估落库 + 管理员覆盖 + 查询
type ModerationService interface {
	// EvaluatePost 对 pending 帖子运行规则链并持久化结果
	EvaluatePost(postID string) (*Outcome, error)

	ApprovePost(postID, moderatorID, reason, notes string) error
	RejectPost(postID, moderatorID, reason, notes string) error
	FlagPost(postID, moderatorID, reason, notes string) error

	GetModerationHistory(postID string) ([]moderationModel.ModerationAction, error)
	GetPendingPosts(limit int) ([]postModel.Post, error)
	GetFlaggedPosts(limit int) ([]postModel.Post, error)
	GetQueueStats() (*QueueStats, error)
}

type moderationService struct {
	repo   repository.ModerationRepository
	engine *Engine
	rdb    *redis.Client
}

// NewModerationService 创建审核服务，rdb 可为 nil（统计不走缓存）
func NewModerationService(repo repository.ModerationRepository, engine *Engine, rdb *redis.Client) ModerationService {
	return &moderationService{repo: repo, engine: engine, rdb: rdb}
}

// EvaluatePost 规则评估并落库
// 仅 pending 帖子会被评估；终态帖子只能通过管理员覆盖变更
func (s *moderationService) EvaluatePost(postID string) (*Outcome, error) {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		return nil, err
	}

	if post.Status != postModel.StatusPending {
		// 重复投递或竞态，直接返回当前状态
		return &Outcome{Status: post.Status}, nil
	}

	outcome := s.engine.EvaluatePost(post)
	s.engine.collector.RecordEvaluation(outcome.Status)

	if outcome.Status != post.Status {
		if !postModel.ValidTransition(post.Status, outcome.Status, false) {
			return nil, ErrInvalidTransition
		}
		if err := s.repo.UpdatePostStatus(post.ID, outcome.Status); err != nil {
			return nil, err
		}
	}

	action := &moderationModel.ModerationAction{
		PostID:      post.ID,
		ModeratorID: moderationModel.SystemModerator,
		Action:      moderationModel.ActionEvaluate,
		FromStatus:  post.Status,
		ToStatus:    outcome.Status,
		Reason:      outcome.Reason,
		RuleName:    outcome.RuleName,
	}
	if err := s.repo.CreateAction(action); err != nil {
		return nil, err
	}

	s.invalidateStats()
	return outcome, nil
}

func (s *moderationService) ApprovePost(postID, moderatorID, reason, notes string) error {
	return s.override(postID, moderatorID, moderationModel.ActionApprove, postModel.StatusApproved, reason, notes)
}

func (s *moderationService) RejectPost(postID, moderatorID, reason, notes string) error {
	return s.override(postID, moderatorID, moderationModel.ActionReject, postModel.StatusRejected, reason, notes)
}

func (s *moderationService) FlagPost(postID, moderatorID, reason, notes string) error {
	return s.override(postID, moderatorID, moderationModel.ActionFlag, postModel.StatusFlagged, reason, notes)
}

// override 管理员覆盖：任何状态均可覆盖，幂等写入也记审计
func (s *moderationService) override(postID, moderatorID, actionType, toStatus, reason, notes string) error {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		return ErrPostNotFound
	}

	if post.Status != toStatus {
		if err := s.repo.UpdatePostStatus(post.ID, toStatus); err != nil {
			return err
		}
	}

	action := &moderationModel.ModerationAction{
		PostID:      post.ID,
		ModeratorID: moderatorID,
		Action:      actionType,
		FromStatus:  post.Status,
		ToStatus:    toStatus,
		Reason:      reason,
		Notes:       notes,
	}
	if err := s.repo.CreateAction(action); err != nil {
		return err
	}

	s.invalidateStats()
	return nil
}

func (s *moderationService) GetModerationHistory(postID string) ([]moderationModel.ModerationAction, error) {
	return s.repo.GetActionsByPostID(postID)
}

func (s *moderationService) GetPendingPosts(limit int) ([]postModel.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetPostsByStatus(postModel.StatusPending, limit)
}

func (s *moderationService) GetFlaggedPosts(limit int) ([]postModel.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetPostsByStatus(postModel.StatusFlagged, limit)
}

const statsCacheKey = "moderation:queue_stats"

// GetQueueStats 审核队列统计，redis 缓存 30 秒
func (s *moderationService) GetQueueStats() (*QueueStats, error) {
	ctx := context.Background()

	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats QueueStats
			if json.Unmarshal([]byte(val), &stats) == nil {
				return &stats, nil
			}
		}
	}

	pending, err := s.repo.CountPostsByStatus(postModel.StatusPending)
	if err != nil {
		return nil, err
	}
	flagged, err := s.repo.CountPostsByStatus(postModel.StatusFlagged)
	if err != nil {
		return nil, err
	}

	stats := &QueueStats{Pending: pending, Flagged: flagged}

	if s.rdb != nil {
		if data, err := json.Marshal(stats); err == nil {
			s.rdb.Set(ctx, statsCacheKey, data, 30*time.Second)
		}
	}

	return stats, nil
}

func (s *moderationService) invalidateStats() {
	if s.rdb != nil {
		s.rdb.Del(context.Background(), statsCacheKey)
	}
}
