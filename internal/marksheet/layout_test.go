package marksheet

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
)

var testSchool = School{
	Name:        "EXAMPLE PUBLIC SCHOOL",
	Affiliation: "Affiliated to C.B.S.E, New Delhi",
	Address:     "123, Knowledge Park, Education City - 452001",
}

func testStudent(class string) *model.Student {
	return &model.Student{
		StudentID: "stu-1",
		Name:      "Aarav Sharma",
		Admission: "ADM2024KG001",
		Roll:      "7",
		Session:   "2024-25",
		Class:     class,
		Section:   "A",
	}
}

func testResult(s *model.Student, term1, term2 []model.SubjectMark) *model.Result {
	r := model.NewResultFor(s)
	r.Term1 = datatypes.JSONSlice[model.SubjectMark](term1)
	r.Term2 = datatypes.JSONSlice[model.SubjectMark](term2)
	grading.Recalculate(r, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	return r
}

func layoutFor(s *model.Student, r *model.Result) *Document {
	return Layout(Input{
		School:  testSchool,
		Student: s,
		Result:  r,
		Date:    time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC),
	})
}

func standardMarks(n int) []model.SubjectMark {
	out := make([]model.SubjectMark, n)
	for i := range out {
		out[i] = model.SubjectMark{
			Subject:  fmt.Sprintf("Subject %d", i+1),
			Periodic: 8, Notebook: 4, Enrichment: 4, HalfYearly: 60,
		}
	}
	return out
}

// textOps 返回内容为 s 的全部文本指令
func textOps(doc *Document, s string) []Op {
	var out []Op
	for _, p := range doc.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText && op.Text == s {
				out = append(out, op)
			}
		}
	}
	return out
}

// ────────── 版式不变量 ──────────

func TestPrimaryColumnWidths(t *testing.T) {
	assert.Equal(t, 514.0, PrimaryTableWidth)
	assert.Equal(t, PrimaryTableWidth, colSubject+colSmall*8+colMedium*5)

	// 第三行：8 个分项 + 跳过的 2 个中列 + 第二学期 3 个中列
	assert.Equal(t, term1Width, colSmall*4+colMedium*2)
	assert.Equal(t, term2Width, colSmall*4+colMedium*3)
}

func TestPrimaryHeaderRowsSpanFullWidth(t *testing.T) {
	s := testStudent("KG")
	doc := layoutFor(s, testResult(s, nil, nil))

	tableY := identityY + identityHeight + tableGap
	// 按行统计起始于该行的矩形宽度；跨行单元格计入起始行
	widths := map[float64]float64{}
	for _, op := range doc.Pages[0].Ops {
		if op.Kind == OpRect && op.Y >= tableY && op.Y < tableY+primaryRowH*3 {
			widths[op.Y] += op.W
		}
	}
	assert.Equal(t, PrimaryTableWidth, widths[tableY])
	assert.Equal(t, PrimaryTableWidth-colSubject, widths[tableY+primaryRowH])
	assert.Equal(t, colSmall*8, widths[tableY+primaryRowH*2])
}

func TestStandardColumnWidths(t *testing.T) {
	var sum float64
	for _, w := range standardColWidths {
		sum += w
	}
	assert.Equal(t, 510.0, sum)
}

// ────────── 低年级版式 ──────────

func TestLayout_PrimaryMissingTerm2(t *testing.T) {
	s := testStudent("KG")
	r := testResult(s,
		[]model.SubjectMark{{Subject: "English", C1Written: 35, C1Oral: 9, C2Written: 36, C2Oral: 8}},
		nil,
	)

	rows := PrimaryRows(r.Term1, r.Term2)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].HasTerm2)
	assert.Equal(t, 88.0, rows[0].Term1Total)
	assert.Empty(t, rows[0].AvgGrade)
	assert.Equal(t, 88.0, r.Term1Total)

	doc := layoutFor(s, r)
	texts := doc.Texts()
	assert.Contains(t, texts, "88")
	assert.Contains(t, texts, "C2") // 44%
	assert.NotContains(t, texts, "TERM-1 SCHOLASTIC AREAS")

	// 平均分单元格为灰底，内容为 "-"
	var avgCell *Op
	for i, op := range doc.Pages[0].Ops {
		if op.Kind == OpRect && op.Paint == PaintFillStroke {
			avgCell = &doc.Pages[0].Ops[i+1]
		}
	}
	require.NotNil(t, avgCell)
	assert.Equal(t, "-", avgCell.Text)
}

func TestLayout_PrimaryMatchedSubject(t *testing.T) {
	s := testStudent("2")
	r := testResult(s,
		[]model.SubjectMark{{Subject: "Hindi", C1Written: 30, C1Oral: 8, C2Written: 30, C2Oral: 8}},
		[]model.SubjectMark{{Subject: "Hindi", C1Written: 31, C1Oral: 9, C2Written: 30, C2Oral: 7}},
	)

	rows := PrimaryRows(r.Term1, r.Term2)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasTerm2)
	assert.Equal(t, 77.0, rows[0].Average)
	assert.Equal(t, grading.GradeB1, rows[0].AvgGrade)

	texts := layoutFor(s, r).Texts()
	assert.Contains(t, texts, "76")
	assert.Contains(t, texts, "77")
}

func TestLayout_PrimaryZeroMarksRenderDash(t *testing.T) {
	s := testStudent("1")
	r := testResult(s,
		[]model.SubjectMark{{Subject: "Art", C1Written: 40}},
		nil,
	)
	doc := layoutFor(s, r)

	// 三个 0 分项 + 第二学期 4 个分项 + 总分 + 平均 + 等级
	assert.GreaterOrEqual(t, len(textOps(doc, "-")), 10)
}

// ────────── 标准版式 ──────────

func TestLayout_StandardTables(t *testing.T) {
	s := testStudent("3")
	r := testResult(s,
		[]model.SubjectMark{{Subject: "Maths", Periodic: 8, Notebook: 4, Enrichment: 4, HalfYearly: 70}},
		[]model.SubjectMark{{Subject: "Maths", Periodic: 9, Notebook: 5, Enrichment: 5, HalfYearly: 75}},
	)
	doc := layoutFor(s, r)
	texts := doc.Texts()

	assert.Contains(t, texts, "TERM-1 SCHOLASTIC AREAS")
	assert.Contains(t, texts, "TERM-2 SCHOLASTIC AREAS")
	assert.Contains(t, texts, "Half Yr (80)")
	assert.Contains(t, texts, "Annual (80)")
	assert.Contains(t, texts, "Term 1 Total: 86")
	assert.Contains(t, texts, "Total: 94")
	assert.Contains(t, texts, "180")
	assert.Contains(t, texts, "90.00%")
	assert.Contains(t, texts, "A2")
	assert.NotContains(t, texts, "Scholastic Areas")

	// 表头为深色填充、白字
	headers := textOps(doc, "SUBJECT")
	require.Len(t, headers, 2)
	assert.Equal(t, White, headers[0].Color)
}

func TestLayout_MismatchedSubjectsDoNotPanic(t *testing.T) {
	for _, class := range []string{"KG", "5"} {
		s := testStudent(class)
		r := testResult(s,
			[]model.SubjectMark{{Subject: "English", Periodic: 5, C1Written: 20}},
			[]model.SubjectMark{{Subject: "Science", Periodic: 7, C2Oral: 9}, {Subject: "Art"}},
		)
		assert.NotPanics(t, func() { layoutFor(s, r) }, "class=%s", class)
	}
}

// ────────── 学生信息与占位 ──────────

func TestLayout_IdentityPlaceholders(t *testing.T) {
	s := testStudent("5")
	doc := layoutFor(s, testResult(s, nil, nil))
	texts := doc.Texts()

	assert.Contains(t, texts, "Aarav Sharma")
	assert.Contains(t, texts, "ADM2024KG001")
	assert.Contains(t, texts, "5 - A")
	assert.Contains(t, texts, "ACADEMIC REPORT CARD (2024-25)")
	// 父名、母名、出生日期缺失
	assert.GreaterOrEqual(t, len(textOps(doc, "-")), 3)
	assert.Contains(t, texts, "Date: 31/03/2025")
}

func TestLayout_IdentityValues(t *testing.T) {
	s := testStudent("5")
	dob := time.Date(2015, 8, 4, 0, 0, 0, 0, time.UTC)
	s.DOB = &dob
	s.FatherName = "Rohit Sharma"
	s.MotherName = "Neha Sharma"

	texts := layoutFor(s, testResult(s, nil, nil)).Texts()
	assert.Contains(t, texts, "04/08/2015")
	assert.Contains(t, texts, "Rohit Sharma")
	assert.Contains(t, texts, "Neha Sharma")
}

func TestLayout_DefaultCoScholastic(t *testing.T) {
	s := testStudent("6")
	r := testResult(s, nil, nil)
	texts := layoutFor(s, r).Texts()

	assert.Contains(t, texts, "Work Education: B")
	assert.Contains(t, texts, "Discipline: B")
	assert.Contains(t, texts, `"VERY GOOD"`)
	assert.Contains(t, texts, "Attendance: 0/0")
	assert.Contains(t, texts, "Evaluated Result: FAIL")
}

func TestLayout_EmptyRemarkFallsBack(t *testing.T) {
	s := testStudent("6")
	r := testResult(s, nil, nil)
	cs := r.CoScholasticData()
	cs.ClassRemark = ""
	r.SetCoScholastic(cs)

	assert.Contains(t, layoutFor(s, r).Texts(), `"Very Good"`)
}

func TestLayout_LogoOnlyWhenConfigured(t *testing.T) {
	s := testStudent("6")
	r := testResult(s, nil, nil)

	countImages := func(doc *Document) int {
		n := 0
		for _, p := range doc.Pages {
			for _, op := range p.Ops {
				if op.Kind == OpImage {
					n++
				}
			}
		}
		return n
	}

	assert.Zero(t, countImages(layoutFor(s, r)))

	in := Input{School: testSchool, Student: s, Result: r}
	in.School.LogoPath = "logo.png"
	assert.Equal(t, 2, countImages(Layout(in)))
}

// ────────── 分页 ──────────

func TestLayout_PrimaryFitsOnePage(t *testing.T) {
	s := testStudent("UKG")
	marks := make([]model.SubjectMark, 8)
	for i := range marks {
		marks[i] = model.SubjectMark{Subject: fmt.Sprintf("S%d", i), C1Written: 30, C1Oral: 8, C2Written: 30, C2Oral: 8}
	}
	doc := layoutFor(s, testResult(s, marks, marks))
	assert.Len(t, doc.Pages, 1)
}

func TestLayout_PageBreakMovesSignatures(t *testing.T) {
	s := testStudent("9")
	doc := layoutFor(s, testResult(s, standardMarks(6), standardMarks(6)))

	require.Len(t, doc.Pages, 2)
	var onSecond []string
	for _, op := range doc.Pages[1].Ops {
		if op.Kind == OpText {
			onSecond = append(onSecond, op.Text)
		}
	}
	assert.Contains(t, onSecond, "Class Teacher")
	assert.Contains(t, onSecond, "Principal")
	assert.Contains(t, onSecond, "Date: 31/03/2025")
}

func TestNeedsPageBreak(t *testing.T) {
	assert.False(t, NeedsPageBreak(650))
	assert.True(t, NeedsPageBreak(651))
}

func TestLayout_Deterministic(t *testing.T) {
	s := testStudent("4")
	r := testResult(s, standardMarks(3), standardMarks(2))
	assert.Equal(t, layoutFor(s, r), layoutFor(s, r))
}

// ────────── 格式化 ──────────

func TestHex(t *testing.T) {
	assert.Equal(t, Color{128, 0, 0}, Hex("#800000"))
	assert.Equal(t, Color{0x2c, 0x3e, 0x50}, Hex("2c3e50"))
	assert.Equal(t, Black, Hex("#zzz"))
	assert.Equal(t, "#27ae60", Hex("#27ae60").String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", FormatDate(nil))
	assert.Equal(t, "86", formatNumber(86))
	assert.Equal(t, "77.5", formatNumber(77.5))
	assert.Equal(t, "-", markCell(0))
	assert.Equal(t, "9", markCell(9))
	assert.Equal(t, "Marksheet_ADM2024KG001.pdf", Filename(testStudent("KG")))
}
