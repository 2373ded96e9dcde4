package service

import (
	"errors"

	"discovery_admin/internal/domain/user/model"
	"discovery_admin/internal/domain/user/repository"
	"discovery_admin/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 管理端账号服务接口
type UserService interface {
	Login(username, password string) (string, error)
	CreateUser(username, password string, role int) (*model.User, error)
	GetUsers(page, limit int) ([]model.User, int64, error)
	GetUser(id string) (*model.User, error)
	UpdateRole(id string, role int) (*model.User, error)
	DisableUser(id string) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Login 账号密码登录，成功返回 JWT
func (s *userService) Login(username, password string) (string, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("invalid username or password")
		}
		return "", err
	}

	if user.Status == model.StatusDisabled {
		return "", errors.New("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid username or password")
	}

	token, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", err
	}
	return token, nil
}

// CreateUser 创建账号（仅 super_admin 调用）
func (s *userService) CreateUser(username, password string, role int) (*model.User, error) {
	if role < model.RoleViewer || role > model.RoleSuperAdmin {
		return nil, errors.New("invalid role")
	}

	if _, err := s.repo.GetByUsername(username); err == nil {
		return nil, errors.New("username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Password: string(hash),
		Role:     role,
		Status:   model.StatusNormal,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUsers 获取账号列表（分页）
func (s *userService) GetUsers(page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetList(offset, limit)
}

// GetUser 获取单个账号
func (s *userService) GetUser(id string) (*model.User, error) {
	return s.repo.GetByID(id)
}

// UpdateRole 调整角色
func (s *userService) UpdateRole(id string, role int) (*model.User, error) {
	if role < model.RoleViewer || role > model.RoleSuperAdmin {
		return nil, errors.New("invalid role")
	}

	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DisableUser 停用账号（软删除语义，保留审计记录）
func (s *userService) DisableUser(id string) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	user.Status = model.StatusDisabled
	return s.repo.Update(user)
}
