package service

import (
	"discovery_admin/internal/domain/post/model"
	"discovery_admin/internal/domain/post/repository"
	"discovery_admin/internal/pkg/worker"
	"discovery_admin/pkg/logger"

	"go.uber.org/zap"
)

type PostService interface {
	CreatePost(userID, content string, mediaURLs, tags, categories []string) (*model.Post, error)
	GetPost(id string) (*model.Post, error)
	GetFeed(page, limit int) ([]model.Post, int64, error)
	GetUserPosts(userID string, page, limit int) ([]model.Post, int64, error)
}

type postService struct {
	repo repository.PostRepository
	pool *worker.Pool
}

func NewPostService(repo repository.PostRepository, pool *worker.Pool) PostService {
	return &postService{repo: repo, pool: pool}
}

// CreatePost 发布帖子，初始状态 pending，异步触发规则评估
func (s *postService) CreatePost(userID, content string, mediaURLs, tags, categories []string) (*model.Post, error) {
	post := &model.Post{
		UserID:     userID,
		Content:    content,
		MediaURLs:  mediaURLs,
		Tags:       tags,
		Categories: categories,
		Status:     model.StatusPending,
	}

	if err := s.repo.Create(post); err != nil {
		return nil, err
	}

	// 规则评估不阻塞发布请求
	if s.pool != nil {
		s.pool.AddTask(worker.EvaluateTask{PostID: post.ID})
	} else if logger.Log != nil {
		logger.Log.Warn("moderation pool not configured, post stays pending",
			zap.String("post_id", post.ID))
	}

	return post, nil
}

func (s *postService) GetPost(id string) (*model.Post, error) {
	return s.repo.GetByID(id)
}

func (s *postService) GetFeed(page, limit int) ([]model.Post, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.GetFeed((page-1)*limit, limit)
}

func (s *postService) GetUserPosts(userID string, page, limit int) ([]model.Post, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.GetByUser(userID, (page-1)*limit, limit)
}
