package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"result-generator/backend/internal/model"
)

// StudentFilter 学生列表筛选条件，空字段不参与过滤
type StudentFilter struct {
	Class   string
	Section string
	Search  string // 姓名或学籍号模糊匹配
}

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByAdmission(ctx context.Context, admission string) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error)
	ListByClass(ctx context.Context, class, section string) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error
	// LatestAdmission 返回 prefix 后接纯数字序号的学籍号中序号最大者，不存在时返回空串
	LatestAdmission(ctx context.Context, prefix string) (string, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByAdmission(ctx context.Context, admission string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("admission = ?", admission).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{}).Where("is_active = ?", true)
	if filter.Class != "" {
		db = db.Where("class = ?", filter.Class)
	}
	if filter.Section != "" {
		db = db.Where("section = ?", strings.ToUpper(filter.Section))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("name ILIKE ? OR admission ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("class ASC, section ASC, roll ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepo) ListByClass(ctx context.Context, class, section string) ([]model.Student, error) {
	var students []model.Student
	db := r.db.WithContext(ctx).
		Where("class = ? AND is_active = ?", class, true)
	if section != "" {
		db = db.Where("section = ?", strings.ToUpper(section))
	}
	if err := db.Order("section ASC, roll ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// Delete 硬删除，释放学籍号
func (r *studentRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		Delete(&model.Student{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepo) LatestAdmission(ctx context.Context, prefix string) (string, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Select("admission").
		Where("admission ~ ?", "^"+regexp.QuoteMeta(prefix)+"[0-9]+$").
		Order("length(admission) DESC, admission DESC").
		First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return student.Admission, nil
}
