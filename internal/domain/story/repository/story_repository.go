package repository

import (
	"time"

	"discovery_admin/internal/domain/story/model"

	"gorm.io/gorm"
)

type StoryRepository interface {
	Create(story *model.Story) error
	GetByID(id string) (*model.Story, error)
	GetActive(now time.Time, limit int) ([]model.Story, error)
	GetActiveByUser(userID string, now time.Time) ([]model.Story, error)
	DeleteExpired(now time.Time) (int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(story *model.Story) error {
	return r.db.Create(story).Error
}

func (r *storyRepository) GetByID(id string) (*model.Story, error) {
	var story model.Story
	if err := r.db.Where("id = ?", id).First(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) GetActive(now time.Time, limit int) ([]model.Story, error) {
	var stories []model.Story
	if err := r.db.Where("expires_at > ?", now).
		Order("created_at desc").Limit(limit).Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) GetActiveByUser(userID string, now time.Time) ([]model.Story, error) {
	var stories []model.Story
	if err := r.db.Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at desc").Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// DeleteExpired 物理删除已过期故事，返回删除行数
func (r *storyRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Unscoped().Where("expires_at <= ?", now).Delete(&model.Story{})
	return result.RowsAffected, result.Error
}
