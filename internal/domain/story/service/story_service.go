package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"discovery_admin/internal/domain/story/model"
	"discovery_admin/internal/domain/story/repository"
	"discovery_admin/pkg/logger"
	"discovery_admin/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrStoryNotFound = errors.New("story not found")

const (
	activeStoriesCacheKey = "story:active"
	viewCountKeyPrefix    = "story:views:"
)

// Options 故事生命周期参数
type Options struct {
	TTL        time.Duration // 故事存活时间
	SweepEvery time.Duration // 过期清理周期
	CacheTTL   time.Duration // 活跃列表缓存上限
}

type StoryService interface {
	CreateStory(userID, mediaURL, caption string) (*model.Story, error)
	GetStory(id string) (*model.Story, int64, error)
	GetActiveStories(limit int) ([]model.Story, error)
	GetUserStories(userID string) ([]model.Story, error)

	// StartSweeper 启动后台过期清理，ctx 取消时退出
	StartSweeper(ctx context.Context)
	// SweepExpired 立即执行一次清理，返回删除数量
	SweepExpired() (int64, error)
}

type storyService struct {
	repo      repository.StoryRepository
	rdb       *redis.Client
	opts      Options
	collector *metrics.Collector
}

// NewStoryService 创建故事服务，rdb 可为 nil（读不走缓存，浏览计数丢失）
func NewStoryService(repo repository.StoryRepository, rdb *redis.Client, opts Options, collector *metrics.Collector) StoryService {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = 10 * time.Minute
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	return &storyService{repo: repo, rdb: rdb, opts: opts, collector: collector}
}

// CreateStory 发布故事，到期时间由服务端 TTL 决定
func (s *storyService) CreateStory(userID, mediaURL, caption string) (*model.Story, error) {
	story := &model.Story{
		UserID:    userID,
		MediaURL:  mediaURL,
		Caption:   caption,
		ExpiresAt: time.Now().Add(s.opts.TTL),
	}

	if err := s.repo.Create(story); err != nil {
		return nil, err
	}

	s.invalidateActiveCache()
	return story, nil
}

// GetStory 读取单个故事并累加浏览计数
// 已过期的故事视为不存在，即使清理任务尚未删除
func (s *storyService) GetStory(id string) (*model.Story, int64, error) {
	story, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrStoryNotFound
		}
		return nil, 0, err
	}

	now := time.Now()
	if !story.Active(now) {
		return nil, 0, ErrStoryNotFound
	}

	views := s.incrementViews(story, now)
	return story, views, nil
}

// GetActiveStories 活跃故事列表，redis 缓存短 TTL
func (s *storyService) GetActiveStories(limit int) ([]model.Story, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx := context.Background()
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, activeStoriesCacheKey).Result(); err == nil {
			var stories []model.Story
			if json.Unmarshal([]byte(cached), &stories) == nil {
				return stories, nil
			}
		}
	}

	stories, err := s.repo.GetActive(time.Now(), limit)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(stories); err == nil {
			s.rdb.Set(ctx, activeStoriesCacheKey, data, s.opts.CacheTTL)
		}
	}
	return stories, nil
}

func (s *storyService) GetUserStories(userID string) ([]model.Story, error) {
	return s.repo.GetActiveByUser(userID, time.Now())
}

// StartSweeper 周期删除过期故事
func (s *storyService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.opts.SweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepExpired(); err != nil && logger.Log != nil {
					logger.Log.Error("story sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// SweepExpired 删除所有已过期故事
func (s *storyService) SweepExpired() (int64, error) {
	deleted, err := s.repo.DeleteExpired(time.Now())
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.collector.RecordStoriesExpired(int(deleted))
		s.invalidateActiveCache()
		if logger.Log != nil {
			logger.Log.Info("expired stories removed", zap.Int64("count", deleted))
		}
	}
	return deleted, nil
}

// incrementViews 浏览计数存 redis，key 随故事剩余存活时间过期
func (s *storyService) incrementViews(story *model.Story, now time.Time) int64 {
	if s.rdb == nil {
		return 0
	}

	ctx := context.Background()
	key := viewCountKeyPrefix + story.ID
	views, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0
	}
	if views == 1 {
		s.rdb.Expire(ctx, key, story.Remaining(now))
	}
	return views
}

func (s *storyService) invalidateActiveCache() {
	if s.rdb != nil {
		s.rdb.Del(context.Background(), activeStoriesCacheKey)
	}
}
