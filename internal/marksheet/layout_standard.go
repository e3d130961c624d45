package marksheet

import (
	"fmt"

	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
)

const (
	standardHeaderH = 25.0
	standardRowH    = 20.0
	standardColX    = 50.0
)

// 科目列 150，其余 6 列各 60
var standardColWidths = []float64{150, 60, 60, 60, 60, 60, 60}

type standardTerm struct {
	title      string
	examHeader string
	totalLabel string
}

var standardTerms = [2]standardTerm{
	{title: "TERM-1 SCHOLASTIC AREAS", examHeader: "Half Yr (80)", totalLabel: "Term 1 Total"},
	{title: "TERM-2 SCHOLASTIC AREAS", examHeader: "Annual (80)", totalLabel: "Total"},
}

// layoutStandardTables 3 年级及以上：两学期各一张表；返回表格下方的游标
func layoutStandardTables(b *builder, r *model.Result, y float64) float64 {
	y = standardTable(b, standardTerms[0], r.Term1, r.Term1Total, y)
	y = standardTable(b, standardTerms[1], r.Term2, r.Term2Total, y)
	return y
}

func standardTable(b *builder, t standardTerm, marks []model.SubjectMark, termTotal float64, y float64) float64 {
	b.text(t.title, marginX, y, helveticaBold(12), Black)
	y += 20

	header := []string{"SUBJECT", "Per. Test (10)", "NB (5)", "SEA (5)", t.examHeader, "Total (100)", "Grade"}
	b.fillRect(marginX, y, contentWidth, standardHeaderH, navy)
	standardCells(b, header, y, helveticaBold(9), White)
	y += standardHeaderH

	for _, m := range marks {
		total := grading.SubjectTotal(m, grading.TierStandard)
		b.strokeRect(marginX, y, contentWidth, standardRowH)
		standardCells(b, []string{
			m.Subject,
			markCell(m.Periodic),
			markCell(m.Notebook),
			markCell(m.Enrichment),
			markCell(m.HalfYearly),
			formatNumber(total),
			string(grading.GradeFor(total)),
		}, y, helvetica(9), Black)
		y += standardRowH
	}

	b.text(fmt.Sprintf("%s: %s", t.totalLabel, formatNumber(termTotal)), 450, y+5, helveticaBold(9), Black)
	return y + 30
}

// standardCells 首列左对齐并留 5 点内边距，其余居中
func standardCells(b *builder, cols []string, y float64, f Font, c Color) {
	x := standardColX
	for i, s := range cols {
		w := standardColWidths[i]
		if i == 0 {
			b.textBox(s, x+5, y+6, w, AlignLeft, f, c)
		} else {
			b.textBox(s, x, y+6, w, AlignCenter, f, c)
		}
		x += w
	}
}
