package grading

import (
	"math"

	"result-generator/backend/internal/model"
)

// SubjectSummary 单科两学期汇总
// 只有两学期都有成绩的科目才计算平均分与等级
type SubjectSummary struct {
	Subject    string  `json:"subject"`
	HasTerm1   bool    `json:"has_term1"`
	Term1Total float64 `json:"term1_total"`
	Term1Grade Grade   `json:"term1_grade,omitempty"`
	HasTerm2   bool    `json:"has_term2"`
	Term2Total float64 `json:"term2_total"`
	Average    float64 `json:"average"`
	Grade      Grade   `json:"grade,omitempty"`
}

// Matched 两学期都有成绩
func (s SubjectSummary) Matched() bool { return s.HasTerm1 && s.HasTerm2 }

// FindSubject 按科目名查找，找不到返回 false
func FindSubject(marks []model.SubjectMark, subject string) (model.SubjectMark, bool) {
	for _, m := range marks {
		if m.Subject == subject {
			return m, true
		}
	}
	return model.SubjectMark{}, false
}

// AverageMark 两学期平均分，四舍五入到整数
func AverageMark(t1, t2 float64) float64 {
	return math.Round((t1 + t2) / 2)
}

// SubjectBreakdown 逐科汇总两学期成绩
// 顺序为第一学期科目在前，其后是仅出现在第二学期的科目；科目按名称匹配
func SubjectBreakdown(term1, term2 []model.SubjectMark, tier Tier) []SubjectSummary {
	out := make([]SubjectSummary, 0, len(term1)+len(term2))
	for _, m := range term1 {
		t1 := SubjectTotal(m, tier)
		s := SubjectSummary{
			Subject:    m.Subject,
			HasTerm1:   true,
			Term1Total: t1,
			Term1Grade: GradeFor(t1),
		}
		if m2, ok := FindSubject(term2, m.Subject); ok {
			s.HasTerm2 = true
			s.Term2Total = SubjectTotal(m2, tier)
			s.Average = AverageMark(t1, s.Term2Total)
			s.Grade = GradeFor(s.Average)
		}
		out = append(out, s)
	}

	for _, m := range term2 {
		if _, ok := FindSubject(term1, m.Subject); ok {
			continue
		}
		out = append(out, SubjectSummary{
			Subject:    m.Subject,
			HasTerm2:   true,
			Term2Total: SubjectTotal(m, tier),
		})
	}
	return out
}

// MatchedAverage 两学期都有成绩的科目平均分之和与科目数
// 只出现在一个学期的科目不计入
func MatchedAverage(summaries []SubjectSummary) (sum float64, count int) {
	for _, s := range summaries {
		if s.Matched() {
			sum += s.Average
			count++
		}
	}
	return sum, count
}
