package marksheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	pkgerrors "result-generator/backend/pkg/errors"
)

// ContentType 成绩单 MIME 类型
const ContentType = "application/pdf"

const (
	lineHeightFactor = 1.15
	checkEvery       = 64        // 每绘制若干条指令检查一次取消
	writeChunk       = 32 * 1024 // 输出分块大小
)

// PDFBackend 用 fpdf 回放绘制指令
type PDFBackend struct {
	Creator string
	// CreationDate 非零时写入文档元数据，便于输出可复现
	CreationDate time.Time
}

// Render 把版式编码为 PDF 写入 w
// ctx 取消时尽快停止并返回 ErrRenderAborted
func (p *PDFBackend) Render(ctx context.Context, doc *Document, w io.Writer) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	if p.Creator != "" {
		pdf.SetCreator(p.Creator, true)
	}
	if !p.CreationDate.IsZero() {
		pdf.SetCreationDate(p.CreationDate)
		pdf.SetModificationDate(p.CreationDate)
	}

	r := &replayer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	for _, page := range doc.Pages {
		pdf.AddPage()
		for i, op := range page.Ops {
			if i%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("%w: %v", pkgerrors.ErrRenderAborted, err)
				}
			}
			r.draw(op)
		}
		if pdf.Err() {
			return fmt.Errorf("生成 PDF 失败: %w", pdf.Error())
		}
	}

	if err := pdf.Output(&ctxWriter{ctx: ctx, w: w}); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", pkgerrors.ErrRenderAborted, err)
		}
		return fmt.Errorf("输出 PDF 失败: %w", err)
	}
	return nil
}

// ────────── 指令回放 ──────────

type replayer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *replayer) draw(op Op) {
	switch op.Kind {
	case OpRect:
		r.rect(op)
	case OpLine:
		r.setDraw(op.StrokeColor, op.LineWidth)
		r.pdf.Line(op.X, op.Y, op.X2, op.Y2)
	case OpText:
		r.text(op)
	case OpImage:
		r.pdf.ImageOptions(op.Path, op.X, op.Y, op.W, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}
}

func (r *replayer) rect(op Op) {
	style := "D"
	switch op.Paint {
	case PaintFill:
		style = "F"
		r.setFill(op.FillColor)
	case PaintFillStroke:
		style = "FD"
		r.setFill(op.FillColor)
		r.setDraw(op.StrokeColor, op.LineWidth)
	default:
		r.setDraw(op.StrokeColor, op.LineWidth)
	}
	r.pdf.Rect(op.X, op.Y, op.W, op.H, style)
}

func (r *replayer) text(op Op) {
	style := op.Font.Style
	if op.Underline {
		style += "U"
	}
	r.pdf.SetFont(op.Font.Family, style, op.Font.Size)
	r.pdf.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))

	lh := op.Font.Size * lineHeightFactor
	align := alignString(op.Align) + "T"

	y := op.Y
	for _, line := range r.lines(op) {
		w := op.W
		if w == 0 {
			w = r.pdf.GetStringWidth(line)
		}
		r.pdf.SetXY(op.X, y)
		r.pdf.CellFormat(w, lh, line, "", 0, align, false, 0, "")
		y += lh
	}
}

// lines 按换行符分段并转为 cp1252，限宽文本再按宽度折行
// 折行在转码后的单字节文本上进行：核心字体宽度表只有 256 项，不能按 rune 查询
func (r *replayer) lines(op Op) []string {
	var out []string
	for _, seg := range strings.Split(op.Text, "\n") {
		seg = r.tr(seg)
		if op.W <= 0 || seg == "" {
			out = append(out, seg)
			continue
		}
		out = append(out, r.wrap(seg, op.W)...)
	}
	return out
}

// wrap 按空格贪心折行，单个词超宽时按字节截断
func (r *replayer) wrap(s string, width float64) []string {
	var out []string
	line := ""
	for _, word := range strings.Split(s, " ") {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if r.pdf.GetStringWidth(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			out = append(out, line)
		}
		for len(word) > 1 && r.pdf.GetStringWidth(word) > width {
			n := 1
			for n < len(word) && r.pdf.GetStringWidth(word[:n+1]) <= width {
				n++
			}
			out = append(out, word[:n])
			word = word[n:]
		}
		line = word
	}
	return append(out, line)
}

func (r *replayer) setDraw(c Color, width float64) {
	if width <= 0 {
		width = 1
	}
	r.pdf.SetLineWidth(width)
	r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func (r *replayer) setFill(c Color) {
	r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func alignString(a Align) string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignRight:
		return "R"
	default:
		return "L"
	}
}

// ────────── ctxWriter ──────────

// ctxWriter 分块写出，每块之前检查 ctx，客户端断开后不再写入
type ctxWriter struct {
	ctx context.Context
	w   io.Writer
}

func (cw *ctxWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		if err := cw.ctx.Err(); err != nil {
			return written, err
		}
		n := min(len(p), writeChunk)
		m, err := cw.w.Write(p[:n])
		written += m
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
