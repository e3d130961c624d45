package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
	"result-generator/backend/internal/repository"
	pkgerrors "result-generator/backend/pkg/errors"
)

// ── 成绩模块业务错误 ──

var (
	ErrResultNotFound   = fmt.Errorf("成绩记录不存在: %w", pkgerrors.ErrNotFound)
	ErrInvalidTerm      = fmt.Errorf("学期只能是 term1 或 term2: %w", pkgerrors.ErrValidationFailed)
	ErrDuplicateSubject = fmt.Errorf("同一学期科目重复: %w", pkgerrors.ErrValidationFailed)
)

const (
	TermOne = "term1"
	TermTwo = "term2"
)

// ResultService 成绩业务接口
// 所有写操作经 ResultRepository 保存，保存前必定重算
type ResultService interface {
	SaveMarks(ctx context.Context, studentID string, req *dto.SaveMarksRequest, callerID string) (*dto.ResultResponse, error)
	UpdateCoScholastic(ctx context.Context, studentID string, patch *dto.CoScholasticPatch, callerID string) (*dto.ResultResponse, error)
	Get(ctx context.Context, studentID string) (*dto.ResultResponse, error)
	ListByClass(ctx context.Context, className, section string) (*dto.ClassResultsResponse, error)
	Recalculate(ctx context.Context, studentID string, callerID string) (*dto.CalculationResponse, error)
}

type resultService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewResultService 创建 ResultService 实例
func NewResultService(repo *repository.Repository, logger *zap.Logger) ResultService {
	return &resultService{repo: repo, logger: logger}
}

// ────────────────────── SaveMarks ──────────────────────

// SaveMarks 整体替换某一学期的分数；成绩记录不存在时按学生档案创建
func (s *resultService) SaveMarks(ctx context.Context, studentID string, req *dto.SaveMarksRequest, callerID string) (*dto.ResultResponse, error) {
	marks, err := toSubjectMarks(req.Marks)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result, err := s.repo.Result.GetByStudentID(ctx, studentID)
	creating := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询成绩记录失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
		result = model.NewResultFor(student)
		creating = true
	} else {
		result.SyncPlacement(student)
	}

	switch req.Term {
	case TermOne:
		result.Term1 = marks
	case TermTwo:
		result.Term2 = marks
	default:
		return nil, ErrInvalidTerm
	}
	result.Touch(callerID, creating)

	if creating {
		err = s.repo.Result.Create(ctx, result)
	} else {
		err = s.repo.Result.Save(ctx, result)
	}
	if err != nil {
		s.logger.Error("保存分数失败",
			zap.String("student_id", studentID), zap.String("term", req.Term), zap.Error(err))
		return nil, err
	}

	result.Student = student
	return toResultResponse(result), nil
}

// ────────────────────── UpdateCoScholastic ──────────────────────

// UpdateCoScholastic 浅合并非学科评价
// 保存时重算会覆盖 result 字段（PROMOTED/DETAINED 不会保留）
func (s *resultService) UpdateCoScholastic(ctx context.Context, studentID string, patch *dto.CoScholasticPatch, callerID string) (*dto.ResultResponse, error) {
	result, err := s.getResult(ctx, studentID)
	if err != nil {
		return nil, err
	}

	result.SetCoScholastic(mergeCoScholastic(result.CoScholasticData(), patch))
	result.Touch(callerID, false)

	if err := s.repo.Result.Save(ctx, result); err != nil {
		s.logger.Error("保存非学科评价失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return toResultResponse(result), nil
}

func mergeCoScholastic(cs model.CoScholastic, p *dto.CoScholasticPatch) model.CoScholastic {
	if p.WorkEdu != nil {
		cs.WorkEdu = *p.WorkEdu
	}
	if p.ArtEdu != nil {
		cs.ArtEdu = *p.ArtEdu
	}
	if p.Health != nil {
		cs.Health = *p.Health
	}
	if p.Discipline != nil {
		cs.Discipline = *p.Discipline
	}
	if p.ClassRemark != nil {
		cs.ClassRemark = *p.ClassRemark
	}
	if p.Attendance != nil {
		cs.Attendance = *p.Attendance
	}
	if p.Result != nil {
		cs.Result = *p.Result
	}
	return cs
}

// ────────────────────── Query ──────────────────────

func (s *resultService) Get(ctx context.Context, studentID string) (*dto.ResultResponse, error) {
	result, err := s.getResult(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toResultResponse(result), nil
}

// ListByClass 班级成绩按百分比降序，附带统计
func (s *resultService) ListByClass(ctx context.Context, className, section string) (*dto.ClassResultsResponse, error) {
	className = strings.TrimSpace(className)
	section = strings.ToUpper(section)

	results, err := s.repo.Result.ListByClass(ctx, className, section)
	if err != nil {
		s.logger.Error("查询班级成绩失败", zap.String("class", className), zap.Error(err))
		return nil, err
	}

	resp := &dto.ClassResultsResponse{
		Class:   className,
		Section: section,
		Count:   len(results),
		Results: make([]dto.ResultResponse, 0, len(results)),
	}
	for i := range results {
		r := toResultResponse(&results[i])
		r.Breakdown = nil
		resp.Results = append(resp.Results, *r)
	}
	resp.Stats = classStats(results)
	return resp, nil
}

// classStats 班级百分比统计，空班级返回零值
func classStats(results []model.Result) dto.ClassStats {
	var out dto.ClassStats
	if len(results) == 0 {
		return out
	}

	data := make(stats.Float64Data, 0, len(results))
	for _, r := range results {
		data = append(data, r.Percentage)
		if grading.Outcome(r.Percentage, grading.Grade(r.Grade)) == model.OutcomeFail {
			out.FailCount++
		} else {
			out.PassCount++
		}
	}

	if v, err := data.Mean(); err == nil {
		out.Mean = grading.Round2(v)
	}
	if v, err := data.Median(); err == nil {
		out.Median = grading.Round2(v)
	}
	if v, err := data.Max(); err == nil {
		out.Highest = v
	}
	if v, err := data.Min(); err == nil {
		out.Lowest = v
	}
	return out
}

// ────────────────────── Recalculate ──────────────────────

func (s *resultService) Recalculate(ctx context.Context, studentID string, callerID string) (*dto.CalculationResponse, error) {
	result, err := s.getResult(ctx, studentID)
	if err != nil {
		return nil, err
	}

	result.Touch(callerID, false)
	if err := s.repo.Result.Save(ctx, result); err != nil {
		s.logger.Error("重算成绩失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	return &dto.CalculationResponse{
		Term1Total: result.Term1Total,
		Term2Total: result.Term2Total,
		GrandTotal: result.GrandTotal,
		Percentage: result.Percentage,
		Grade:      result.Grade,
	}, nil
}

// ── 辅助函数 ──

func (s *resultService) getResult(ctx context.Context, studentID string) (*model.Result, error) {
	result, err := s.repo.Result.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResultNotFound
		}
		s.logger.Error("查询成绩记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// toSubjectMarks 转换并检查科目名重复
func toSubjectMarks(in []dto.SubjectMarkInput) (datatypes.JSONSlice[model.SubjectMark], error) {
	seen := make(map[string]struct{}, len(in))
	out := make(datatypes.JSONSlice[model.SubjectMark], 0, len(in))
	for _, m := range in {
		name := strings.TrimSpace(m.Subject)
		if _, dup := seen[name]; dup {
			return nil, ErrDuplicateSubject
		}
		seen[name] = struct{}{}
		out = append(out, model.SubjectMark{
			Subject:    name,
			Periodic:   m.Periodic,
			Notebook:   m.Notebook,
			Enrichment: m.Enrichment,
			HalfYearly: m.HalfYearly,
			C1Written:  m.C1Written,
			C1Oral:     m.C1Oral,
			C2Written:  m.C2Written,
			C2Oral:     m.C2Oral,
		})
	}
	return out, nil
}

func toMarkInputs(marks []model.SubjectMark) []dto.SubjectMarkInput {
	out := make([]dto.SubjectMarkInput, 0, len(marks))
	for _, m := range marks {
		out = append(out, dto.SubjectMarkInput{
			Subject:    m.Subject,
			Periodic:   m.Periodic,
			Notebook:   m.Notebook,
			Enrichment: m.Enrichment,
			HalfYearly: m.HalfYearly,
			C1Written:  m.C1Written,
			C1Oral:     m.C1Oral,
			C2Written:  m.C2Written,
			C2Oral:     m.C2Oral,
		})
	}
	return out
}

func toResultResponse(r *model.Result) *dto.ResultResponse {
	tier := grading.ClassifyTier(r.Class)
	cs := r.CoScholasticData()

	resp := &dto.ResultResponse{
		ID:      r.ResultID,
		Session: r.Session,
		Class:   r.Class,
		Section: r.Section,
		Tier:    tier,
		Term1:   toMarkInputs(r.Term1),
		Term2:   toMarkInputs(r.Term2),
		CoScholastic: dto.CoScholasticResponse{
			WorkEdu:     cs.WorkEdu,
			ArtEdu:      cs.ArtEdu,
			Health:      cs.Health,
			Discipline:  cs.Discipline,
			ClassRemark: cs.ClassRemark,
			Attendance:  cs.Attendance,
			Result:      cs.Result,
		},
		Term1Total:     r.Term1Total,
		Term2Total:     r.Term2Total,
		GrandTotal:     r.GrandTotal,
		MaxMarks:       grading.MaxMarks(grading.SubjectCount(r.Term1, r.Term2)),
		Percentage:     r.Percentage,
		Grade:          r.Grade,
		Breakdown:      grading.SubjectBreakdown(r.Term1, r.Term2, tier),
		LastCalculated: r.LastCalculated.Format(time.RFC3339),
	}
	if sum, n := grading.MatchedAverage(resp.Breakdown); n > 0 {
		resp.SubjectAverage = grading.Round2(sum / float64(n))
	}
	if r.Student != nil {
		resp.Student = &dto.StudentBrief{
			ID:        r.Student.StudentID,
			Name:      r.Student.Name,
			Admission: r.Student.Admission,
			Roll:      r.Student.Roll,
		}
	}
	return resp
}
