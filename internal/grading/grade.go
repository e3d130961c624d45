package grading

import "github.com/montanaflynn/stats"

// Grade CBSE 八级评定
type Grade string

const (
	GradeA1 Grade = "A1"
	GradeA2 Grade = "A2"
	GradeB1 Grade = "B1"
	GradeB2 Grade = "B2"
	GradeC1 Grade = "C1"
	GradeC2 Grade = "C2"
	GradeD  Grade = "D"
	GradeE  Grade = "E"
)

// PassMark 及格线（百分比）
const PassMark = 33

// 自上而下匹配，边界值归入较高等级
var bands = []struct {
	min   float64
	grade Grade
}{
	{91, GradeA1},
	{81, GradeA2},
	{71, GradeB1},
	{61, GradeB2},
	{51, GradeC1},
	{41, GradeC2},
	{PassMark, GradeD},
}

// GradeFor 按百分比（或满分 100 的单科分数）评定等级
func GradeFor(percentage float64) Grade {
	for _, b := range bands {
		if percentage >= b.min {
			return b.grade
		}
	}
	return GradeE
}

// Grades 全部等级，从高到低
func Grades() []Grade {
	return []Grade{GradeA1, GradeA2, GradeB1, GradeB2, GradeC1, GradeC2, GradeD, GradeE}
}

// Percentage 总分占满分的百分比，保留两位小数（四舍五入远离零）
// 满分 = 科目数 × 200（每科每学期 100 分，共两学期）
func Percentage(grandTotal float64, subjectCount int) float64 {
	maxMarks := MaxMarks(subjectCount)
	if maxMarks <= 0 {
		return 0
	}
	return Round2(grandTotal / maxMarks * 100)
}

// MaxMarks 两学期满分
func MaxMarks(subjectCount int) float64 {
	return float64(subjectCount) * 200
}

// Round2 保留两位小数，0.5 远离零进位
func Round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		// 仅 NaN 会出错
		return 0
	}
	return r
}
