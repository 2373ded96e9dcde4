package service

import (
	"errors"

	"discovery_admin/internal/domain/interest/model"
	"discovery_admin/internal/domain/interest/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInterestHasChildren = errors.New("interest has children")
	ErrParentNotFound      = errors.New("parent interest not found")
)

// TreeNode 兴趣树节点
type TreeNode struct {
	model.Interest
	Children []*TreeNode `json:"children,omitempty"`
}

type InterestService interface {
	CreateInterest(name, slug string, parentID *string, keywords []string) (*model.Interest, error)
	GetInterest(id string) (*model.Interest, error)
	GetAll() ([]model.Interest, error)
	GetTree() ([]*TreeNode, error)
	GetChildren(parentID string) ([]model.Interest, error)
	UpdateKeywords(id string, keywords []string) (*model.Interest, error)
	DeleteInterest(id string) error
}

type interestService struct {
	repo repository.InterestRepository
}

func NewInterestService(repo repository.InterestRepository) InterestService {
	return &interestService{repo: repo}
}

// CreateInterest 创建节点，Path / Level 由父节点推导
func (s *interestService) CreateInterest(name, slug string, parentID *string, keywords []string) (*model.Interest, error) {
	// Path 包含自身 ID，插入前先定 ID
	id := uuid.New().String()

	interest := &model.Interest{
		Name:     name,
		Slug:     slug,
		Keywords: keywords,
	}
	interest.ID = id

	if parentID == nil {
		interest.Level = 0
		interest.Path = []string{id}
	} else {
		parent, err := s.repo.GetByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		interest.ParentID = parentID
		interest.Level = parent.Level + 1
		interest.Path = append(append([]string{}, parent.Path...), id)
	}

	if err := s.repo.Create(interest); err != nil {
		return nil, err
	}
	return interest, nil
}

func (s *interestService) GetInterest(id string) (*model.Interest, error) {
	return s.repo.GetByID(id)
}

func (s *interestService) GetAll() ([]model.Interest, error) {
	return s.repo.GetAll()
}

// GetTree 返回完整的兴趣树
func (s *interestService) GetTree() ([]*TreeNode, error) {
	interests, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*TreeNode, len(interests))
	for i := range interests {
		nodes[interests[i].ID] = &TreeNode{Interest: interests[i]}
	}

	var roots []*TreeNode
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[*n.ParentID]; ok {
			parent.Children = append(parent.Children, n)
		}
	}
	return roots, nil
}

func (s *interestService) GetChildren(parentID string) ([]model.Interest, error) {
	return s.repo.GetChildren(parentID)
}

func (s *interestService) UpdateKeywords(id string, keywords []string) (*model.Interest, error) {
	interest, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	interest.Keywords = keywords
	if err := s.repo.Update(interest); err != nil {
		return nil, err
	}
	return interest, nil
}

// DeleteInterest 删除叶子节点；有子节点时拒绝，避免破坏 Path 不变式
func (s *interestService) DeleteInterest(id string) error {
	children, err := s.repo.GetChildren(id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ErrInterestHasChildren
	}
	return s.repo.Delete(id)
}
