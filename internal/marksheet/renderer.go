package marksheet

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"result-generator/backend/internal/model"
)

// Renderer 组合版式与 PDF 后端
type Renderer struct {
	school  School
	backend *PDFBackend
	now     func() time.Time
	logger  *zap.Logger
}

// NewRenderer 创建渲染器
// 校徽文件不存在时记录警告并不再绘制
func NewRenderer(school School, now func() time.Time, logger *zap.Logger) *Renderer {
	if now == nil {
		now = time.Now
	}
	if school.LogoPath != "" {
		if _, err := os.Stat(school.LogoPath); err != nil {
			logger.Warn("校徽文件不可用，成绩单将不含校徽",
				zap.String("path", school.LogoPath), zap.Error(err))
			school.LogoPath = ""
		}
	}
	return &Renderer{
		school:  school,
		backend: &PDFBackend{Creator: school.Name},
		now:     now,
		logger:  logger,
	}
}

// Layout 生成版式但不编码
func (r *Renderer) Layout(result *model.Result, student *model.Student) *Document {
	return Layout(Input{
		School:  r.school,
		Student: student,
		Result:  result,
		Date:    r.now(),
	})
}

// Render 生成成绩单 PDF 并写入 w
// 调用方保证 result 与 student 存在且属于同一学生
func (r *Renderer) Render(ctx context.Context, result *model.Result, student *model.Student, w io.Writer) error {
	doc := r.Layout(result, student)
	return r.backend.Render(ctx, doc, w)
}

// Filename 下载文件名 Marksheet_<学籍号>.pdf
func Filename(student *model.Student) string {
	return "Marksheet_" + student.Admission + ".pdf"
}
