package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"result-generator/backend/config"
	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/model"
	"result-generator/backend/internal/repository"
	pkgerrors "result-generator/backend/pkg/errors"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound = fmt.Errorf("学生不存在: %w", pkgerrors.ErrNotFound)
	ErrAdmissionExists = fmt.Errorf("学籍号已存在: %w", pkgerrors.ErrConflict)
	ErrInvalidDOB      = fmt.Errorf("出生日期格式错误: %w", pkgerrors.ErrValidationFailed)
)

// StudentService 学生档案业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	ListByClass(ctx context.Context, className, section string) ([]dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
	NextAdmission(ctx context.Context, className string) (string, error)
}

type studentService struct {
	repo    *repository.Repository
	grading config.GradingConfig
	now     func() time.Time
	logger  *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, cfg config.GradingConfig, now func() time.Time, logger *zap.Logger) StudentService {
	if now == nil {
		now = time.Now
	}
	return &studentService{repo: repo, grading: cfg, now: now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	admission := strings.ToUpper(strings.TrimSpace(req.Admission))
	if admission == "" {
		next, err := s.NextAdmission(ctx, req.Class)
		if err != nil {
			return nil, err
		}
		admission = next
	}

	if _, err := s.repo.Student.GetByAdmission(ctx, admission); err == nil {
		return nil, ErrAdmissionExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学籍号失败", zap.String("admission", admission), zap.Error(err))
		return nil, err
	}

	dob, err := parseDOB(req.DOB)
	if err != nil {
		return nil, err
	}

	session := strings.TrimSpace(req.Session)
	if session == "" {
		session = s.grading.DefaultSession
	}

	student := &model.Student{
		Name:       strings.TrimSpace(req.Name),
		Admission:  admission,
		Roll:       strings.TrimSpace(req.Roll),
		Session:    session,
		Class:      strings.TrimSpace(req.Class),
		Section:    strings.ToUpper(req.Section),
		DOB:        dob,
		DOBWords:   req.DOBWords,
		FatherName: strings.TrimSpace(req.FatherName),
		MotherName: strings.TrimSpace(req.MotherName),
		IsActive:   true,
	}
	student.Touch(callerID, true)

	// 学生与空成绩记录在同一事务中创建
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Student.Create(ctx, student); err != nil {
		rollback(tx)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAdmissionExists
		}
		s.logger.Error("创建学生失败", zap.String("admission", admission), zap.Error(err))
		return nil, err
	}

	result := model.NewResultFor(student)
	result.Touch(callerID, true)
	if err := txRepo.Result.Create(ctx, result); err != nil {
		rollback(tx)
		s.logger.Error("创建成绩记录失败", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}

	if err := commit(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	return toStudentResponse(student), nil
}

// ────────────────────── Query ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	filter := repository.StudentFilter{
		Class:   strings.TrimSpace(req.Class),
		Section: req.Section,
		Search:  strings.TrimSpace(req.Search),
	}
	students, total, err := s.repo.Student.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		list = append(list, *toStudentResponse(&students[i]))
	}
	return list, total, nil
}

func (s *studentService) ListByClass(ctx context.Context, className, section string) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.ListByClass(ctx, strings.TrimSpace(className), section)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.String("class", className), zap.Error(err))
		return nil, err
	}

	list := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		list = append(list, *toStudentResponse(&students[i]))
	}
	return list, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Roll != nil {
		student.Roll = strings.TrimSpace(*req.Roll)
	}
	if req.Session != nil {
		student.Session = *req.Session
	}
	if req.Class != nil {
		student.Class = strings.TrimSpace(*req.Class)
	}
	if req.Section != nil {
		student.Section = strings.ToUpper(*req.Section)
	}
	if req.DOB != nil {
		dob, err := parseDOB(*req.DOB)
		if err != nil {
			return nil, err
		}
		student.DOB = dob
	}
	if req.DOBWords != nil {
		student.DOBWords = *req.DOBWords
	}
	if req.FatherName != nil {
		student.FatherName = strings.TrimSpace(*req.FatherName)
	}
	if req.MotherName != nil {
		student.MotherName = strings.TrimSpace(*req.MotherName)
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	student.Touch(callerID, false)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Student.Update(ctx, student); err != nil {
		rollback(tx)
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := syncResultPlacement(ctx, txRepo, student, callerID); err != nil {
		rollback(tx)
		s.logger.Error("同步成绩班级信息失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := commit(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	return toStudentResponse(student), nil
}

// syncResultPlacement 把学生的班级/分班/学年同步到成绩记录
// 班级变化可能改变档次，保存时会重新计算
func syncResultPlacement(ctx context.Context, repo *repository.Repository, student *model.Student, callerID string) error {
	result, err := repo.Result.GetByStudentID(ctx, student.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !result.SyncPlacement(student) {
		return nil
	}
	result.Touch(callerID, false)
	return repo.Result.Save(ctx, result)
}

// ────────────────────── Delete ──────────────────────

// Delete 硬删除学生及其成绩记录
func (s *studentService) Delete(ctx context.Context, id string) error {
	if _, err := s.getStudent(ctx, id); err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Result.DeleteByStudentID(ctx, id); err != nil {
		rollback(tx)
		s.logger.Error("删除成绩记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := txRepo.Student.Delete(ctx, id); err != nil {
		rollback(tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := commit(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── NextAdmission ──────────────────────

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// AdmissionPrefix 学籍号前缀 ADM{年份}{班级}，班级去除非字母数字并大写，为空时用 GEN
func AdmissionPrefix(year int, className string) string {
	clean := strings.ToUpper(nonAlnum.ReplaceAllString(className, ""))
	if clean == "" {
		clean = "GEN"
	}
	return fmt.Sprintf("ADM%d%s", year, clean)
}

// NextAdmission 生成下一个学籍号，序号至少三位
func (s *studentService) NextAdmission(ctx context.Context, className string) (string, error) {
	prefix := AdmissionPrefix(s.now().Year(), className)

	latest, err := s.repo.Student.LatestAdmission(ctx, prefix)
	if err != nil {
		s.logger.Error("查询最大学籍号失败", zap.String("prefix", prefix), zap.Error(err))
		return "", err
	}

	seq := 1
	if latest != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(latest, prefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// ── 辅助函数 ──

func (s *studentService) getStudent(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func parseDOB(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, ErrInvalidDOB
	}
	return &t, nil
}

func toStudentResponse(s *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:         s.StudentID,
		Name:       s.Name,
		Admission:  s.Admission,
		Roll:       s.Roll,
		Session:    s.Session,
		Class:      s.Class,
		Section:    s.Section,
		DOBWords:   s.DOBWords,
		FatherName: s.FatherName,
		MotherName: s.MotherName,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
	if s.DOB != nil {
		resp.DOB = s.DOB.Format("2006-01-02")
	}
	return resp
}
