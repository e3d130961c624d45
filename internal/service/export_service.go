package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"result-generator/backend/internal/repository"
	pkgerrors "result-generator/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoResults    = fmt.Errorf("该班级暂无成绩: %w", pkgerrors.ErrNotFound)
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：单 Sheet，按百分比降序排名，末尾附班级统计
type ExportService interface {
	// ExportClassResults 导出班级成绩排名为 Excel
	ExportClassResults(ctx context.Context, className, section string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportClassResults 导出班级成绩为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（班级/分班/学年），合并单元格
//   - 第 2 行：表头
//   - 数据行：名次、学籍号、姓名、学号、分班、两学期总分、总分、百分比、等级、结果
//   - 空一行后：平均/中位/最高/最低百分比
//
// 返回值：buf（Excel 内容）, filename（Results_<班级>_<分班>.xlsx）, error

var exportHeaders = []string{
	"Rank", "Admission No", "Name", "Roll No", "Section",
	"Term 1", "Term 2", "Grand Total", "Percentage", "Grade", "Result",
}

func (s *exportService) ExportClassResults(ctx context.Context, className, section string) (*bytes.Buffer, string, error) {
	className = strings.TrimSpace(className)
	section = strings.ToUpper(strings.TrimSpace(section))

	// 1. 查询成绩（已按百分比降序）
	results, err := s.repo.Result.ListByClass(ctx, className, section)
	if err != nil {
		s.logger.Error("查询班级成绩失败", zap.String("class", className), zap.Error(err))
		return nil, "", err
	}
	if len(results) == 0 {
		return nil, "", ErrExportNoResults
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	if err := useSheet(f, sheetName); err != nil {
		s.logger.Error("创建工作表失败", zap.String("sheet", sheetName), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 24)
	f.SetColWidth(sheetName, "D", "K", 12)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2C3E50"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13, Color: "#800000"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// 标题行
	sectionLabel := section
	if sectionLabel == "" {
		sectionLabel = "ALL"
	}
	title := fmt.Sprintf("Class %s - Section %s (%s)", className, sectionLabel, results[0].Session)
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	// 表头
	row := 2
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(exportHeaders)-1), row), headerStyle)

	// 数据行
	row = 3
	for i, r := range results {
		var admission, name, roll string
		if r.Student != nil {
			admission, name, roll = r.Student.Admission, r.Student.Name, r.Student.Roll
		}
		values := []interface{}{
			i + 1, admission, name, roll, r.Section,
			r.Term1Total, r.Term2Total, r.GrandTotal, r.Percentage, r.Grade,
			r.CoScholasticData().Result,
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		row++
	}

	// 统计
	st := classStats(results)
	row++
	summary := []struct {
		label string
		value float64
	}{
		{"Mean %", st.Mean},
		{"Median %", st.Median},
		{"Highest %", st.Highest},
		{"Lowest %", st.Lowest},
	}
	for _, sm := range summary {
		f.SetCellValue(sheetName, cell("H", row), sm.label)
		f.SetCellValue(sheetName, cell("I", row), sm.value)
		row++
	}
	f.SetCellValue(sheetName, cell("H", row), "Pass / Fail")
	f.SetCellValue(sheetName, cell("I", row), fmt.Sprintf("%d / %d", st.PassCount, st.FailCount))

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, ExportFilename(className, section), nil
}

// useSheet 新建工作表设为活动表，并删除默认的 Sheet1
func useSheet(f *excelize.File, name string) error {
	idx, err := f.NewSheet(name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return f.DeleteSheet("Sheet1")
}

// ExportFilename Results_<班级>_<分班>.xlsx，未指定分班时为 ALL
func ExportFilename(className, section string) string {
	if section == "" {
		section = "ALL"
	}
	clean := strings.ToUpper(nonAlnum.ReplaceAllString(className, ""))
	return fmt.Sprintf("Results_%s_%s.xlsx", clean, strings.ToUpper(section))
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
