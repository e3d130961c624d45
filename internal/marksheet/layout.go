package marksheet

import (
	"fmt"
	"strconv"
	"time"

	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
)

// School 成绩单抬头
type School struct {
	Name        string
	Affiliation string
	Address     string
	LogoPath    string // 为空时不绘制校徽
}

// Input 版式输入：同一学生的成绩与档案快照
type Input struct {
	School  School
	Student *model.Student
	Result  *model.Result
	Date    time.Time // 落款日期
}

// 版式常量
const (
	marginX      = 40.0
	contentWidth = 515.0

	logoWidth = 60.0

	separatorY = 115.0
	titleY     = 140.0

	identityY      = 175.0
	identityHeight = 90.0

	tableGap = 20.0 // 学生信息框与成绩表之间

	summaryHeight = 50.0

	coBoxHeight   = 80.0
	coBoxWidth    = 250.0
	coHeaderH     = 18.0
	coItemHeight  = 12.0
	remarksBoxX   = 305.0
	footerY       = 760.0
	footerClear   = 30.0
	dateStampY    = 790.0
	defaultRemark = "Very Good"
)

var (
	maroon    = Hex("#800000")
	navy      = Hex("#2c3e50")
	green     = Hex("#27ae60")
	lightGrey = Hex("#ecf0f1")
	paleGrey  = Hex("#f9f9f9")
)

// Layout 生成成绩单版式
// 单次线性排版：边框 → 抬头 → 学生信息 → 成绩表（按档次分支）→ 汇总 → 评价与评语 → 签名栏 → 日期
func Layout(in Input) *Document {
	b := newBuilder()

	layoutHeader(b, in)
	layoutIdentity(b, in)

	y := identityY + identityHeight + tableGap
	if grading.ClassifyTier(in.Result.Class).IsPrimary() {
		y = layoutPrimaryTable(b, in.Result, y)
	} else {
		y = layoutStandardTables(b, in.Result, y)
	}

	layoutTrailer(b, in, y)
	return b.doc
}

// ────────── 抬头 ──────────

func layoutHeader(b *builder, in Input) {
	b.strokeRect(20, 20, 555, 800)
	b.strokeRect(25, 25, 545, 790)

	if in.School.LogoPath != "" {
		b.image(in.School.LogoPath, 50, 50, logoWidth)
		b.image(in.School.LogoPath, 485, 50, logoWidth)
	}

	b.textBox(in.School.Name, 0, 50, PageWidth, AlignCenter, helveticaBold(24), maroon)
	b.textBox(in.School.Affiliation, 0, 80, PageWidth, AlignCenter, helvetica(10), Black)
	b.textBox(in.School.Address, 0, 95, PageWidth, AlignCenter, helvetica(10), Black)

	b.fillRect(marginX, separatorY, contentWidth, 2, maroon)

	b.push(Op{
		Kind:      OpText,
		Text:      fmt.Sprintf("ACADEMIC REPORT CARD (%s)", in.Result.Session),
		X:         marginX,
		Y:         titleY,
		W:         contentWidth,
		Align:     AlignCenter,
		Font:      helveticaBold(14),
		Color:     Black,
		Underline: true,
	})
}

// ────────── 学生信息 ──────────

func layoutIdentity(b *builder, in Input) {
	s, r := in.Student, in.Result
	b.strokeRect(marginX, identityY, contentWidth, identityHeight)

	left := []struct{ label, value string }{
		{"Student Name", s.Name},
		{"Father's Name", orDash(s.FatherName)},
		{"Mother's Name", orDash(s.MotherName)},
	}
	for i, f := range left {
		identityField(b, 50, identityY+15+float64(i)*20, f.label, f.value)
	}

	right := []struct{ label, value string }{
		{"Admission No", s.Admission},
		{"Class/Section", r.Class + " - " + r.Section},
		{"Roll No", s.Roll},
		{"Date of Birth", FormatDate(s.DOB)},
	}
	for i, f := range right {
		identityField(b, 350, identityY+15+float64(i)*20, f.label, f.value)
	}
}

// identityField 标签、冒号、取值三列，冒号在标签后 80 点
func identityField(b *builder, x, y float64, label, value string) {
	b.text(label, x, y, helveticaBold(10), Black)
	b.text(":", x+80, y, helveticaBold(10), Black)
	b.text(value, x+90, y, helvetica(10), Black)
}

// ────────── 汇总、评价、签名 ──────────

func layoutTrailer(b *builder, in Input, y float64) {
	r := in.Result

	summaryY := y + 10
	b.strokeRectColor(marginX, summaryY, contentWidth, summaryHeight, green)

	third := contentWidth / 3
	cells := []struct{ label, value string }{
		{"GRAND TOTAL", formatNumber(r.GrandTotal)},
		{"PERCENTAGE", fmt.Sprintf("%.2f%%", r.Percentage)},
		{"FINAL GRADE", r.Grade},
	}
	for i, c := range cells {
		x := marginX + float64(i)*third
		b.textBox(c.label, x, summaryY+10, third, AlignCenter, helveticaBold(11), green)
		b.textBox(c.value, x, summaryY+30, third, AlignCenter, helvetica(14), Black)
	}

	boxY := summaryY + 70
	cs := r.CoScholasticData()

	// 左：非学科评价
	b.strokeRect(marginX, boxY, coBoxWidth, coBoxHeight)
	b.fillRect(marginX, boxY, coBoxWidth, coHeaderH, lightGrey)
	b.textBox("CO-SCHOLASTIC AREAS", marginX, boxY+5, coBoxWidth, AlignCenter, helveticaBold(9), Black)

	items := []string{
		"Work Education: " + cs.WorkEdu,
		"Art Education: " + cs.ArtEdu,
		"Health & Physical Ed: " + cs.Health,
		"Discipline: " + cs.Discipline,
	}
	for i, s := range items {
		b.text(s, 50, boxY+25+float64(i)*coItemHeight, helvetica(8), Black)
	}

	// 右：评语与出勤
	b.strokeRect(remarksBoxX, boxY, coBoxWidth, coBoxHeight)
	b.fillRect(remarksBoxX, boxY, coBoxWidth, coHeaderH, lightGrey)
	b.textBox("REMARKS & ATTENDANCE", remarksBoxX, boxY+5, coBoxWidth, AlignCenter, helveticaBold(9), Black)

	rowY := boxY + 25
	remark := cs.ClassRemark
	if remark == "" {
		remark = defaultRemark
	}
	b.text("Class Teacher Remark:", remarksBoxX+10, rowY, helvetica(8), Black)
	b.textBox(`"`+remark+`"`, remarksBoxX+10, rowY+12, 230, AlignLeft, helveticaOblique(8), Black)
	rowY += 28
	b.text("Attendance: "+cs.Attendance, remarksBoxX+10, rowY, helveticaBold(8), Black)
	b.text("Evaluated Result: "+cs.Result, remarksBoxX+10, rowY+12, helveticaBold(8), Black)

	// 内容与签名栏重叠时另起一页，正常版式不会触发
	if NeedsPageBreak(boxY) {
		b.addPage()
	}

	signatures := []struct {
		x     float64
		label string
	}{
		{80, "Class Teacher"},
		{250, "Parent"},
		{420, "Principal"},
	}
	for _, s := range signatures {
		b.line(s.x, footerY, s.x+100, footerY)
		b.textBox(s.label, s.x, footerY+5, 100, AlignCenter, helvetica(10), Black)
	}

	b.text("Date: "+in.Date.Format("02/01/2006"), marginX, dateStampY, helvetica(8), Black)
}

// NeedsPageBreak 评价框起始位置是否会压到签名栏
func NeedsPageBreak(boxY float64) bool {
	return boxY+coBoxHeight > footerY-footerClear
}

// ────────── 格式化 ──────────

// FormatDate 日期格式 DD/MM/YYYY，缺失时为 "-"
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatNumber 去掉多余小数位：86 → "86"，77.5 → "77.5"
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// markCell 分数单元格，0 显示为 "-"
func markCell(v float64) string {
	if v == 0 {
		return "-"
	}
	return formatNumber(v)
}
