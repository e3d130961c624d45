package repository

import (
	"context"

	"gorm.io/gorm"

	"result-generator/backend/internal/model"
)

// UserRepository 账号数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail 忽略大小写
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// List role 为空时返回全部角色，按角色、姓名排序
	List(ctx context.Context, role string, offset, limit int) ([]model.User, int64, error)
	CountActiveByRole(ctx context.Context, role string) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Student").Create(user).Error
}

// GetByID 学生账号同时加载关联档案
func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return firstUser(r.db.WithContext(ctx).Preload("Student").Where("user_id = ?", id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return firstUser(r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email))
}

func (r *userRepo) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return firstUser(r.db.WithContext(ctx).Where("student_id = ?", studentID))
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Student").Save(user).Error
}

func (r *userRepo) List(ctx context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		db = db.Where("role = ?", role)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("role ASC, name ASC").
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) CountActiveByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&n).Error
	return n, err
}

func firstUser(q *gorm.DB) (*model.User, error) {
	var user model.User
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
