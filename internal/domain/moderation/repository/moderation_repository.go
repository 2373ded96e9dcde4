package repository

import (
	moderationModel "discovery_admin/internal/domain/moderation/model"
	postModel "discovery_admin/internal/domain/post/model"

	"gorm.io/gorm"
)

type ModerationRepository interface {
	GetPostByID(id string) (*postModel.Post, error)
	UpdatePostStatus(id string, status string) error
	GetPostsByStatus(status string, limit int) ([]postModel.Post, error)
	CountPostsByStatus(status string) (int64, error)

	CreateAction(action *moderationModel.ModerationAction) error
	GetActionsByPostID(postID string) ([]moderationModel.ModerationAction, error)
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) GetPostByID(id string) (*postModel.Post, error) {
	var post postModel.Post
	if err := r.db.Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *moderationRepository) UpdatePostStatus(id string, status string) error {
	return r.db.Model(&postModel.Post{}).Where("id = ?", id).Update("status", status).Error
}

// GetPostsByStatus 按创建时间倒序，limit 截断
func (r *moderationRepository) GetPostsByStatus(status string, limit int) ([]postModel.Post, error) {
	var posts []postModel.Post
	if err := r.db.Where("status = ?", status).Order("created_at desc").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *moderationRepository) CountPostsByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&postModel.Post{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *moderationRepository) CreateAction(action *moderationModel.ModerationAction) error {
	return r.db.Create(action).Error
}

func (r *moderationRepository) GetActionsByPostID(postID string) ([]moderationModel.ModerationAction, error) {
	var actions []moderationModel.ModerationAction
	if err := r.db.Where("post_id = ?", postID).Order("created_at asc").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
