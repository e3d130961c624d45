package marksheet

import (
	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
)

// 低年级合并表列宽：科目 + 8 个窄列 + 5 个中列 = 514
const (
	primaryRowH = 20.0
	colSubject  = 125.0
	colSmall    = 28.0
	colMedium   = 33.0

	term1Width = colSmall*4 + colMedium*2 // 4 个分项 + 总分 + 等级
	term2Width = colSmall*4 + colMedium*3 // 4 个分项 + 总分 + 平均 + 等级

	// PrimaryTableWidth 合并表总宽
	PrimaryTableWidth = colSubject + term1Width + term2Width
)

var cycleSubHeaders = []string{"Written\n(40)", "Oral\n(10)", "Written\n(40)", "Oral\n(10)"}

// layoutPrimaryTable 低年级合并成绩表，三行表头；返回表格下方的游标
func layoutPrimaryTable(b *builder, r *model.Result, y float64) float64 {
	x0 := marginX
	bold9 := helveticaBold(9)

	// 第一行：科目（跨三行）、Term 1、Term 2
	b.strokeRect(x0, y, colSubject, primaryRowH*3)
	b.textBox("Scholastic Areas", x0, y+25, colSubject, AlignCenter, bold9, Black)

	b.strokeRect(x0+colSubject, y, term1Width, primaryRowH)
	b.textBox("Term 1", x0+colSubject, y+6, term1Width, AlignCenter, bold9, Black)

	b.strokeRect(x0+colSubject+term1Width, y, term2Width, primaryRowH)
	b.textBox("Term 2", x0+colSubject+term1Width, y+6, term2Width, AlignCenter, bold9, Black)

	y += primaryRowH

	// 第二行：周期分组，总分/平均/等级跨两行
	x := x0 + colSubject
	x = cycleHeader(b, "Cycle 1 & 2", x, y)
	x = cycleHeader(b, "Cycle 3 & 4", x, y)
	x = tallHeader(b, "Marks Obt\n(100)", x, y, 5)
	x = tallHeader(b, "Grade", x, y, 15)
	x = cycleHeader(b, "Cycle 5 & 6", x, y)
	x = cycleHeader(b, "Cycle 7 & 8", x, y)
	x = tallHeader(b, "Marks Obt\n(100)", x, y, 5)
	x = tallHeader(b, "Average\n(T1 & T2)", x, y, 5)
	tallHeader(b, "Grade", x, y, 15)

	y += primaryRowH

	// 第三行：笔试/口试
	x = x0 + colSubject
	for _, h := range cycleSubHeaders {
		b.strokeRect(x, y, colSmall, primaryRowH)
		b.textBox(h, x, y+5, colSmall, AlignCenter, helveticaBold(7), Black)
		x += colSmall
	}
	x += colMedium * 2
	for _, h := range cycleSubHeaders {
		b.strokeRect(x, y, colSmall, primaryRowH)
		b.textBox(h, x, y+5, colSmall, AlignCenter, helveticaBold(7), Black)
		x += colSmall
	}

	y += primaryRowH

	// 数据行：以第一学期科目为序，第二学期按科目名匹配
	for _, row := range PrimaryRows(r.Term1, r.Term2) {
		primaryRow(b, row, y)
		y += primaryRowH
	}

	return y + 10
}

func cycleHeader(b *builder, label string, x, y float64) float64 {
	b.strokeRect(x, y, colSmall*2, primaryRowH)
	b.textBox(label, x, y+6, colSmall*2, AlignCenter, helveticaBold(8), Black)
	return x + colSmall*2
}

func tallHeader(b *builder, label string, x, y, dy float64) float64 {
	b.strokeRect(x, y, colMedium, primaryRowH*2)
	b.textBox(label, x, y+dy, colMedium, AlignCenter, helveticaBold(8), Black)
	return x + colMedium
}

// PrimaryRow 合并表的一行
type PrimaryRow struct {
	Subject    string
	Term1      model.SubjectMark
	Term1Total float64
	Term1Grade grading.Grade
	Term2      model.SubjectMark
	Term2Total float64
	HasTerm2   bool
	Average    float64
	AvgGrade   grading.Grade // 无第二学期成绩时为空
}

// PrimaryRows 计算合并表各行
func PrimaryRows(term1, term2 []model.SubjectMark) []PrimaryRow {
	rows := make([]PrimaryRow, 0, len(term1))
	for _, t1 := range term1 {
		row := PrimaryRow{
			Subject:    t1.Subject,
			Term1:      t1,
			Term1Total: grading.SubjectTotal(t1, grading.TierPrimary),
		}
		row.Term1Grade = grading.GradeFor(row.Term1Total)

		if t2, ok := grading.FindSubject(term2, t1.Subject); ok {
			row.Term2 = t2
			row.HasTerm2 = true
			row.Term2Total = grading.SubjectTotal(t2, grading.TierPrimary)
			row.Average = grading.AverageMark(row.Term1Total, row.Term2Total)
			row.AvgGrade = grading.GradeFor(row.Average)
		}
		rows = append(rows, row)
	}
	return rows
}

func primaryRow(b *builder, row PrimaryRow, y float64) {
	regular, bold := helvetica(9), helveticaBold(9)
	x := marginX

	b.strokeRect(x, y, colSubject, primaryRowH)
	b.textBox(row.Subject, x+5, y+6, colSubject-5, AlignLeft, regular, Black)
	x += colSubject

	cell := func(w float64, s string, f Font) {
		b.strokeRect(x, y, w, primaryRowH)
		b.textBox(s, x, y+6, w, AlignCenter, f, Black)
		x += w
	}

	for _, v := range cycleValues(row.Term1) {
		cell(colSmall, markCell(v), regular)
	}
	cell(colMedium, formatNumber(row.Term1Total), bold)
	cell(colMedium, string(row.Term1Grade), regular)

	for _, v := range cycleValues(row.Term2) {
		cell(colSmall, markCell(v), regular)
	}
	t2Total := "-"
	if row.HasTerm2 {
		t2Total = formatNumber(row.Term2Total)
	}
	cell(colMedium, t2Total, bold)

	avg := "-"
	if row.HasTerm2 {
		avg = markCell(row.Average)
	}
	b.fillStrokeRect(x, y, colMedium, primaryRowH, paleGrey)
	b.textBox(avg, x, y+6, colMedium, AlignCenter, regular, Black)
	x += colMedium

	grade := "-"
	if row.HasTerm2 {
		grade = string(row.AvgGrade)
	}
	cell(colMedium, grade, regular)
}

func cycleValues(m model.SubjectMark) [4]float64 {
	return [4]float64{m.C1Written, m.C1Oral, m.C2Written, m.C2Oral}
}
