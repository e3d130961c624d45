package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/model"
	"result-generator/backend/internal/repository"
	pkgerrors "result-generator/backend/pkg/errors"
)

const maxImportRows = 1000

var (
	ErrImportNoData      = fmt.Errorf("Excel 文件无数据行（第一行为表头）: %w", pkgerrors.ErrValidationFailed)
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行: %w", maxImportRows, pkgerrors.ErrValidationFailed)
	ErrImportBadHeader   = fmt.Errorf("Excel 表头缺少必要列（name/roll/class/section）: %w", pkgerrors.ErrValidationFailed)
	ErrImportBadFile     = fmt.Errorf("无法解析 Excel 文件: %w", pkgerrors.ErrValidationFailed)
)

// ImportStudentRow Excel 导入解析后的单行数据
type ImportStudentRow struct {
	Row        int
	Name       string
	Admission  string
	Roll       string
	Class      string
	Section    string
	Session    string
	DOB        string
	FatherName string
	MotherName string
}

func (r ImportStudentRow) empty() bool {
	return r.Name == "" && r.Admission == "" && r.Roll == "" && r.Class == "" && r.Section == ""
}

// ImportService 学生批量导入业务接口
type ImportService interface {
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error)
}

type importService struct {
	repo    *repository.Repository
	session string
	year    func() int
	logger  *zap.Logger
}

// NewImportService 创建 ImportService 实例
// defaultSession 用于未填写学年的行；year 提供学籍号中的年份
func NewImportService(repo *repository.Repository, defaultSession string, year func() int, logger *zap.Logger) ImportService {
	return &importService{repo: repo, session: defaultSession, year: year, logger: logger}
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile 读取第一个工作表，表头列序不限
func (s *importService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrImportBadFile
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	col := parseHeaderIndex(excelRows[0])
	for _, key := range []string{"name", "roll", "class", "section"} {
		if col[key] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		raw := excelRows[i]
		get := func(key string) string {
			if idx := col[key]; idx >= 0 && idx < len(raw) {
				return strings.TrimSpace(raw[idx])
			}
			return ""
		}

		item := ImportStudentRow{
			Row:        i + 1,
			Name:       get("name"),
			Admission:  strings.ToUpper(get("admission")),
			Roll:       get("roll"),
			Class:      get("class"),
			Section:    strings.ToUpper(get("section")),
			Session:    get("session"),
			DOB:        get("dob"),
			FatherName: get("father_name"),
			MotherName: get("mother_name"),
		}
		// 跳过全空行
		if item.empty() {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析表头，返回列名 -> 列索引映射（缺失为 -1）
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name": -1, "admission": -1, "roll": -1, "class": -1, "section": -1,
		"session": -1, "dob": -1, "father_name": -1, "mother_name": -1,
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.NewReplacer(" ", "_", ".", "").Replace(key)
		switch key {
		case "admission_no", "admission_number":
			key = "admission"
		case "roll_no", "roll_number":
			key = "roll"
		case "father", "fathers_name":
			key = "father_name"
		case "mother", "mothers_name":
			key = "mother_name"
		case "date_of_birth":
			key = "dob"
		}
		if v, ok := idx[key]; ok && v < 0 {
			idx[key] = i
		}
	}
	return idx
}

// ────────────────────── ImportStudents ──────────────────────

// ImportStudents 先逐行校验，再在同一事务中创建全部合法行
// 任一写入失败则整体回滚
func (s *importService) ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error) {
	resp := &dto.ImportStudentResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportStudentError{Row: row, Reason: reason})
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	seen := make(map[string]int)
	nextSeq := make(map[string]int)
	var valid []*model.Student

	for _, row := range rows {
		if row.Name == "" || row.Roll == "" || row.Class == "" {
			fail(row.Row, "必填字段为空（name/roll/class）")
			continue
		}
		if !dto.ValidSection(row.Section) {
			fail(row.Row, fmt.Sprintf("分班格式错误: %q", row.Section))
			continue
		}
		session := row.Session
		if session == "" {
			session = s.session
		} else if !dto.ValidSession(session) {
			fail(row.Row, fmt.Sprintf("学年格式错误: %q", session))
			continue
		}
		dob, err := parseDOB(row.DOB)
		if err != nil {
			fail(row.Row, fmt.Sprintf("出生日期格式错误: %q", row.DOB))
			continue
		}

		admission := row.Admission
		if admission == "" {
			admission, err = s.allocateAdmission(ctx, row.Class, nextSeq)
			if err != nil {
				s.logger.Error("生成学籍号失败", zap.Int("row", row.Row), zap.Error(err))
				return nil, err
			}
		} else if _, err := s.repo.Student.GetByAdmission(ctx, admission); err == nil {
			fail(row.Row, fmt.Sprintf("学籍号已存在: %s", admission))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学籍号失败", zap.String("admission", admission), zap.Error(err))
			return nil, err
		}

		if first, dup := seen[admission]; dup {
			fail(row.Row, fmt.Sprintf("学籍号与第 %d 行重复: %s", first, admission))
			continue
		}
		seen[admission] = row.Row

		student := &model.Student{
			Name:       row.Name,
			Admission:  admission,
			Roll:       row.Roll,
			Session:    session,
			Class:      row.Class,
			Section:    row.Section,
			DOB:        dob,
			FatherName: row.FatherName,
			MotherName: row.MotherName,
			IsActive:   true,
		}
		student.Touch(callerID, true)
		valid = append(valid, student)
	}

	if len(valid) == 0 {
		return resp, nil
	}

	// 第二阶段：在事务中批量创建学生及空成绩记录
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	for _, student := range valid {
		if err := txRepo.Student.Create(ctx, student); err != nil {
			rollback(tx)
			s.logger.Error("导入学生写入失败，事务回滚", zap.String("admission", student.Admission), zap.Error(err))
			return nil, fmt.Errorf("学籍号 %s 写入失败，已回滚全部导入: %w", student.Admission, err)
		}
		result := model.NewResultFor(student)
		result.Touch(callerID, true)
		if err := txRepo.Result.Create(ctx, result); err != nil {
			rollback(tx)
			s.logger.Error("导入成绩记录写入失败，事务回滚", zap.String("admission", student.Admission), zap.Error(err))
			return nil, fmt.Errorf("学籍号 %s 写入失败，已回滚全部导入: %w", student.Admission, err)
		}
		resp.Success++
		resp.Admissions = append(resp.Admissions, student.Admission)
	}

	if err := commit(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生批量导入完成",
		zap.Int("total", resp.Total), zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

// allocateAdmission 按班级分配学籍号，同一文件内序号递增
func (s *importService) allocateAdmission(ctx context.Context, className string, nextSeq map[string]int) (string, error) {
	prefix := AdmissionPrefix(s.year(), className)

	seq, ok := nextSeq[prefix]
	if !ok {
		latest, err := s.repo.Student.LatestAdmission(ctx, prefix)
		if err != nil {
			return "", err
		}
		seq = 1
		if latest != "" {
			if n, err := strconv.Atoi(strings.TrimPrefix(latest, prefix)); err == nil {
				seq = n + 1
			}
		}
	}
	nextSeq[prefix] = seq + 1
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}
