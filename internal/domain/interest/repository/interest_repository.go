package repository

import (
	"discovery_admin/internal/domain/interest/model"

	"gorm.io/gorm"
)

type InterestRepository interface {
	Create(interest *model.Interest) error
	GetByID(id string) (*model.Interest, error)
	GetBySlug(slug string) (*model.Interest, error)
	GetAll() ([]model.Interest, error)
	GetChildren(parentID string) ([]model.Interest, error)
	Update(interest *model.Interest) error
	Delete(id string) error
	// IncrementPostCount 按 slug 调整冗余的帖子计数，delta 可为负
	IncrementPostCount(slug string, delta int) error
}

type interestRepository struct {
	db *gorm.DB
}

func NewInterestRepository(db *gorm.DB) InterestRepository {
	return &interestRepository{db: db}
}

func (r *interestRepository) Create(interest *model.Interest) error {
	return r.db.Create(interest).Error
}

func (r *interestRepository) GetByID(id string) (*model.Interest, error) {
	var interest model.Interest
	if err := r.db.Where("id = ?", id).First(&interest).Error; err != nil {
		return nil, err
	}
	return &interest, nil
}

func (r *interestRepository) GetBySlug(slug string) (*model.Interest, error) {
	var interest model.Interest
	if err := r.db.Where("slug = ?", slug).First(&interest).Error; err != nil {
		return nil, err
	}
	return &interest, nil
}

func (r *interestRepository) GetAll() ([]model.Interest, error) {
	var interests []model.Interest
	if err := r.db.Order("level asc, name asc").Find(&interests).Error; err != nil {
		return nil, err
	}
	return interests, nil
}

func (r *interestRepository) GetChildren(parentID string) ([]model.Interest, error) {
	var interests []model.Interest
	if err := r.db.Where("parent_id = ?", parentID).Order("name asc").Find(&interests).Error; err != nil {
		return nil, err
	}
	return interests, nil
}

func (r *interestRepository) Update(interest *model.Interest) error {
	return r.db.Save(interest).Error
}

func (r *interestRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Interest{}).Error
}

func (r *interestRepository) IncrementPostCount(slug string, delta int) error {
	return r.db.Model(&model.Interest{}).Where("slug = ?", slug).
		UpdateColumn("post_count", gorm.Expr("post_count + ?", delta)).Error
}
