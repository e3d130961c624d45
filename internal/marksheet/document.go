// Package marksheet 成绩单版式与 PDF 输出
//
// 版式层（Layout）把成绩与学生档案转成一组带绝对坐标的绘制指令（Document），
// 不做任何 I/O；后端（PDFBackend）负责把指令编码为 PDF 字节流。
// 坐标单位为 PDF 点，原点在页面左上角。
package marksheet

import (
	"fmt"
	"strconv"
	"strings"
)

// A4 页面尺寸（点）
const (
	PageWidth  = 595.28
	PageHeight = 841.89
)

// OpKind 绘制指令类型
type OpKind int

const (
	OpRect OpKind = iota
	OpLine
	OpText
	OpImage
)

func (k OpKind) String() string {
	switch k {
	case OpRect:
		return "rect"
	case OpLine:
		return "line"
	case OpText:
		return "text"
	case OpImage:
		return "image"
	default:
		return "unknown"
	}
}

// Paint 矩形的描边/填充方式
type Paint int

const (
	PaintStroke Paint = iota
	PaintFill
	PaintFillStroke
)

// Align 文本水平对齐
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Color RGB 颜色
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// Hex 解析 "#rrggbb"，格式错误时返回黑色
func Hex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Black
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Font 字体（使用 PDF 标准 14 字体，无需嵌入）
type Font struct {
	Family string
	Style  string // "" / "B" / "I"
	Size   float64
}

func helvetica(size float64) Font     { return Font{Family: "Helvetica", Size: size} }
func helveticaBold(size float64) Font { return Font{Family: "Helvetica", Style: "B", Size: size} }
func helveticaOblique(size float64) Font {
	return Font{Family: "Helvetica", Style: "I", Size: size}
}

// Op 单条绘制指令，按 Kind 使用对应字段
type Op struct {
	Kind OpKind

	// 位置与尺寸：矩形、文本框、图片共用；W 为 0 的文本不限宽、不换行
	X, Y, W, H float64

	// 直线终点
	X2, Y2 float64

	// 矩形
	Paint       Paint
	FillColor   Color
	StrokeColor Color
	LineWidth   float64

	// 文本
	Text      string
	Font      Font
	Color     Color
	Align     Align
	Underline bool

	// 图片
	Path string
}

// Page 一页的绘制指令，按顺序执行
type Page struct {
	Ops []Op
}

// Document 版式结果
type Document struct {
	Width  float64
	Height float64
	Pages  []*Page
}

// OpCount 全部指令数
func (d *Document) OpCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Ops)
	}
	return n
}

// Texts 按顺序返回全部文本内容，便于检索
func (d *Document) Texts() []string {
	var out []string
	for _, p := range d.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText {
				out = append(out, op.Text)
			}
		}
	}
	return out
}

// ────────── builder ──────────

// builder 顺序追加指令，维护当前页
type builder struct {
	doc  *Document
	page *Page
}

func newBuilder() *builder {
	b := &builder{doc: &Document{Width: PageWidth, Height: PageHeight}}
	b.addPage()
	return b
}

func (b *builder) addPage() {
	b.page = &Page{}
	b.doc.Pages = append(b.doc.Pages, b.page)
}

func (b *builder) push(op Op) {
	b.page.Ops = append(b.page.Ops, op)
}

func (b *builder) strokeRect(x, y, w, h float64) {
	b.push(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Paint: PaintStroke, StrokeColor: Black, LineWidth: 1})
}

func (b *builder) strokeRectColor(x, y, w, h float64, c Color) {
	b.push(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Paint: PaintStroke, StrokeColor: c, LineWidth: 1})
}

func (b *builder) fillRect(x, y, w, h float64, c Color) {
	b.push(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Paint: PaintFill, FillColor: c})
}

func (b *builder) fillStrokeRect(x, y, w, h float64, fill Color) {
	b.push(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Paint: PaintFillStroke, FillColor: fill, StrokeColor: Black, LineWidth: 1})
}

func (b *builder) line(x1, y1, x2, y2 float64) {
	b.push(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, StrokeColor: Black, LineWidth: 1})
}

// text 左对齐、不限宽的文本
func (b *builder) text(s string, x, y float64, f Font, c Color) {
	b.push(Op{Kind: OpText, Text: s, X: x, Y: y, Font: f, Color: c})
}

// textBox 在宽度 w 内按对齐方式排版，超宽自动换行
func (b *builder) textBox(s string, x, y, w float64, align Align, f Font, c Color) {
	b.push(Op{Kind: OpText, Text: s, X: x, Y: y, W: w, Align: align, Font: f, Color: c})
}

func (b *builder) image(path string, x, y, w float64) {
	b.push(Op{Kind: OpImage, Path: path, X: x, Y: y, W: w})
}
