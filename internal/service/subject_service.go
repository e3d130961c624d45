package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/model"
	"result-generator/backend/internal/repository"
	pkgerrors "result-generator/backend/pkg/errors"
)

// ErrEmptySubjects 去除空白和重复后科目列表为空
var ErrEmptySubjects = fmt.Errorf("科目列表不能为空: %w", pkgerrors.ErrValidationFailed)

// SubjectService 班级科目配置业务接口
type SubjectService interface {
	Upsert(ctx context.Context, req *dto.UpsertSubjectsRequest, callerID string) (*dto.SubjectsResponse, error)
	GetByClass(ctx context.Context, className string) (*dto.SubjectsResponse, error)
	ListAll(ctx context.Context) ([]dto.SubjectsResponse, error)
}

type subjectService struct {
	repo     *repository.Repository
	defaults []string
	logger   *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
// defaults 为班级未配置时返回的科目列表
func NewSubjectService(repo *repository.Repository, defaults []string, logger *zap.Logger) SubjectService {
	return &subjectService{
		repo:     repo,
		defaults: append([]string(nil), defaults...),
		logger:   logger,
	}
}

// NormalizeClassName 班级名统一为去空白的大写
func NormalizeClassName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func (s *subjectService) Upsert(ctx context.Context, req *dto.UpsertSubjectsRequest, callerID string) (*dto.SubjectsResponse, error) {
	subjects := cleanSubjects(req.Subjects)
	if len(subjects) == 0 {
		return nil, ErrEmptySubjects
	}

	cs := &model.ClassSubject{
		ClassName: NormalizeClassName(req.ClassName),
		Subjects:  datatypes.JSONSlice[string](subjects),
	}
	cs.Touch(callerID, true)

	if err := s.repo.ClassSubject.Upsert(ctx, cs); err != nil {
		s.logger.Error("保存班级科目失败", zap.String("class", cs.ClassName), zap.Error(err))
		return nil, err
	}
	return &dto.SubjectsResponse{ClassName: cs.ClassName, Subjects: subjects}, nil
}

func (s *subjectService) GetByClass(ctx context.Context, className string) (*dto.SubjectsResponse, error) {
	name := NormalizeClassName(className)

	cs, err := s.repo.ClassSubject.GetByClass(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.SubjectsResponse{
				ClassName: name,
				Subjects:  append([]string(nil), s.defaults...),
				IsDefault: true,
			}, nil
		}
		s.logger.Error("查询班级科目失败", zap.String("class", name), zap.Error(err))
		return nil, err
	}
	return &dto.SubjectsResponse{ClassName: cs.ClassName, Subjects: []string(cs.Subjects)}, nil
}

func (s *subjectService) ListAll(ctx context.Context) ([]dto.SubjectsResponse, error) {
	list, err := s.repo.ClassSubject.List(ctx)
	if err != nil {
		s.logger.Error("查询科目配置失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.SubjectsResponse, 0, len(list))
	for _, cs := range list {
		out = append(out, dto.SubjectsResponse{ClassName: cs.ClassName, Subjects: []string(cs.Subjects)})
	}
	return out, nil
}

// cleanSubjects 去空白、去重，保持原顺序
func cleanSubjects(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
