package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"result-generator/backend/internal/marksheet"
	"result-generator/backend/internal/model"
	"result-generator/backend/internal/repository"
	pkgerrors "result-generator/backend/pkg/errors"
)

// Marksheet 已加载、待渲染的成绩单
type Marksheet struct {
	Filename string
	result   *model.Result
	student  *model.Student
}

// MarksheetService 成绩单业务接口
//
// 分两步：Prepare 读取学生与成绩（不存在时返回 NotFound，不产生任何输出），
// Render 把同一份快照写入 w。Handler 在两步之间设置响应头。
type MarksheetService interface {
	Prepare(ctx context.Context, studentID string) (*Marksheet, error)
	Render(ctx context.Context, m *Marksheet, w io.Writer) error
}

type marksheetService struct {
	repo     *repository.Repository
	renderer *marksheet.Renderer
	logger   *zap.Logger
}

// NewMarksheetService 创建 MarksheetService 实例
func NewMarksheetService(repo *repository.Repository, renderer *marksheet.Renderer, logger *zap.Logger) MarksheetService {
	return &marksheetService{repo: repo, renderer: renderer, logger: logger}
}

func (s *marksheetService) Prepare(ctx context.Context, studentID string) (*Marksheet, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result, err := s.repo.Result.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResultNotFound
		}
		s.logger.Error("查询成绩记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	// 班级信息不一致时先同步再渲染
	if result.SyncPlacement(student) {
		s.logger.Warn("成绩记录班级信息与学生档案不一致，已同步",
			zap.String("student_id", studentID),
			zap.String("class", student.Class),
			zap.String("section", student.Section))
		if err := s.repo.Result.Save(ctx, result); err != nil {
			s.logger.Error("同步成绩班级信息失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
	}

	return &Marksheet{
		Filename: marksheet.Filename(student),
		result:   result,
		student:  student,
	}, nil
}

func (s *marksheetService) Render(ctx context.Context, m *Marksheet, w io.Writer) error {
	err := s.renderer.Render(ctx, m.result, m.student, w)
	if err != nil && !errors.Is(err, pkgerrors.ErrRenderAborted) {
		s.logger.Error("生成成绩单失败", zap.String("student_id", m.student.StudentID), zap.Error(err))
	}
	return err
}
