package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/model"
	"result-generator/backend/internal/repository"
)

var (
	// ErrUserSelfDeactivate 管理员不能停用自己
	ErrUserSelfDeactivate = errors.New("不能停用自己的账号")
	// ErrLastAdmin 至少保留一个启用的管理员
	ErrLastAdmin = errors.New("不能停用最后一个管理员")
)

// UserService 账号管理业务接口（仅管理员）
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.AdminUserResponse, int64, error)
	SetActive(ctx context.Context, id string, active bool, callerID string) error
	ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error)
}

type userService struct {
	repo       *repository.Repository
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, bcryptCost int, logger *zap.Logger) UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.AdminUserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Role, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		resp := toUserResponse(&users[i])
		resp.CreatedAt = users[i].CreatedAt.Format(time.RFC3339)
		list = append(list, dto.AdminUserResponse{UserResponse: resp, IsActive: users[i].IsActive})
	}
	return list, total, nil
}

// ────────────────────── SetActive ──────────────────────

func (s *userService) SetActive(ctx context.Context, id string, active bool, callerID string) error {
	if id == callerID && !active {
		return ErrUserSelfDeactivate
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsActive == active {
		return nil
	}
	if !active && user.Role == model.RoleAdmin {
		n, err := s.repo.User.CountActiveByRole(ctx, model.RoleAdmin)
		if err != nil {
			s.logger.Error("统计管理员数量失败", zap.Error(err))
			return err
		}
		if n <= 1 {
			return ErrLastAdmin
		}
	}

	user.IsActive = active
	user.Touch(callerID, false)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新账号状态失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	// 生成 8 位随机密码（保证包含字母和数字）
	tempPassword, err := generateTempPassword(8)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.Touch(callerID, false)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// ── 内部辅助方法 ──

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	out := make([]byte, length)

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	var err error
	if out[0], err = pick(letters); err != nil {
		return "", err
	}
	if out[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if out[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}

	return string(out), nil
}
