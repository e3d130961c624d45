package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
)

// ResultRepository 成绩数据访问接口
// Create / Save 写入前必定重算派生字段
type ResultRepository interface {
	Create(ctx context.Context, result *model.Result) error
	GetByStudentID(ctx context.Context, studentID string) (*model.Result, error)
	Save(ctx context.Context, result *model.Result) error
	ListByClass(ctx context.Context, class, section string) ([]model.Result, error)
	DeleteByStudentID(ctx context.Context, studentID string) error
}

type resultRepo struct {
	db     *gorm.DB
	engine *grading.Engine
}

// NewResultRepo 创建 ResultRepository 实例
func NewResultRepo(db *gorm.DB, engine *grading.Engine) ResultRepository {
	return &resultRepo{db: db, engine: engine}
}

func (r *resultRepo) Create(ctx context.Context, result *model.Result) error {
	r.engine.Recalculate(result)
	return r.db.WithContext(ctx).Omit("Student").Create(result).Error
}

func (r *resultRepo) GetByStudentID(ctx context.Context, studentID string) (*model.Result, error) {
	var result model.Result
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("student_id = ?", studentID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepo) Save(ctx context.Context, result *model.Result) error {
	r.engine.Recalculate(result)
	return r.db.WithContext(ctx).Omit("Student").Save(result).Error
}

// ListByClass 按百分比降序
func (r *resultRepo) ListByClass(ctx context.Context, class, section string) ([]model.Result, error) {
	var results []model.Result
	db := r.db.WithContext(ctx).
		Preload("Student").
		Where("class = ?", class)
	if section != "" {
		db = db.Where("section = ?", strings.ToUpper(section))
	}
	if err := db.Order("percentage DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepo) DeleteByStudentID(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&model.Result{}).Error
}
