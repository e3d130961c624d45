package grading

import (
	"time"

	"result-generator/backend/internal/model"
)

// SubjectTotal 单科单学期总分，只读取该档次对应的四个字段
func SubjectTotal(m model.SubjectMark, tier Tier) float64 {
	if tier.IsPrimary() {
		return m.C1Written + m.C1Oral + m.C2Written + m.C2Oral
	}
	return m.Periodic + m.Notebook + m.Enrichment + m.HalfYearly
}

// TermTotal 学期总分
func TermTotal(marks []model.SubjectMark, tier Tier) float64 {
	var total float64
	for _, m := range marks {
		total += SubjectTotal(m, tier)
	}
	return total
}

// SubjectCount 计算满分用的科目数，取两学期中较多者
func SubjectCount(term1, term2 []model.SubjectMark) int {
	return max(len(term1), len(term2))
}

// Outcome 由百分比与等级推导结果状态
func Outcome(percentage float64, grade Grade) string {
	if percentage < PassMark || grade == GradeE {
		return model.OutcomeFail
	}
	return model.OutcomePass
}

// Recalculate 根据两学期分数重算全部派生字段，并写入计算时间
// 会覆盖 co_scholastic.result：手工设置的 PROMOTED/DETAINED 在下一次重算后变为 PASS/FAIL
func Recalculate(r *model.Result, now time.Time) {
	tier := ClassifyTier(r.Class)

	r.Term1Total = TermTotal(r.Term1, tier)
	r.Term2Total = TermTotal(r.Term2, tier)
	r.GrandTotal = r.Term1Total + r.Term2Total
	r.Percentage = Percentage(r.GrandTotal, SubjectCount(r.Term1, r.Term2))

	grade := GradeFor(r.Percentage)
	r.Grade = string(grade)

	cs := r.CoScholasticData()
	cs.Result = Outcome(r.Percentage, grade)
	r.SetCoScholastic(cs)

	r.LastCalculated = now
}

// Engine 带时钟的计算器，供需要注入当前时间的调用方使用
type Engine struct {
	now func() time.Time
}

// NewEngine 创建计算器，now 为 nil 时使用 time.Now
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Recalculate 以引擎时钟重算
func (e *Engine) Recalculate(r *model.Result) {
	Recalculate(r, e.now())
}

// Now 当前时间
func (e *Engine) Now() time.Time {
	return e.now()
}
