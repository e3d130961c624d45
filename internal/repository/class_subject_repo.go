package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"result-generator/backend/internal/model"
)

// ClassSubjectRepository 班级科目配置数据访问接口
type ClassSubjectRepository interface {
	Upsert(ctx context.Context, cs *model.ClassSubject) error
	GetByClass(ctx context.Context, className string) (*model.ClassSubject, error)
	List(ctx context.Context) ([]model.ClassSubject, error)
}

type classSubjectRepo struct {
	db *gorm.DB
}

// NewClassSubjectRepo 创建 ClassSubjectRepository 实例
func NewClassSubjectRepo(db *gorm.DB) ClassSubjectRepository {
	return &classSubjectRepo{db: db}
}

// Upsert 按 class_name 插入或覆盖科目列表
func (r *classSubjectRepo) Upsert(ctx context.Context, cs *model.ClassSubject) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"subjects", "updated_at", "updated_by"}),
		}).
		Create(cs).Error
}

func (r *classSubjectRepo) GetByClass(ctx context.Context, className string) (*model.ClassSubject, error) {
	var cs model.ClassSubject
	err := r.db.WithContext(ctx).
		Where("class_name = ?", className).
		First(&cs).Error
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *classSubjectRepo) List(ctx context.Context) ([]model.ClassSubject, error) {
	var list []model.ClassSubject
	if err := r.db.WithContext(ctx).Order("class_name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
