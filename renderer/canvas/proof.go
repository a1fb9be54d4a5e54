package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/linebreak"
	"github.com/ByLCY/scriptorium/renderer"
	"github.com/ByLCY/scriptorium/style"
)

// ProofOptions configures the page geometry of a proof; lengths are in mm.
type ProofOptions struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	// NoteWidth is the width of the outer margin column for margin notes.
	NoteWidth float64
	// Leading multiplies the largest font size of a line whose style gives
	// no line height.
	Leading float64
	// Styles supplies paragraph line heights; optional.
	Styles ParagraphStyles
}

// ParagraphStyles resolves paragraph styles by name, e.g. *style.Sheet.
type ParagraphStyles interface {
	Paragraph(name string) (style.ParagraphStyle, error)
}

func (o ProofOptions) withDefaults() ProofOptions {
	if o.PageWidth <= 0 {
		o.PageWidth = 210
	}
	if o.PageHeight <= 0 {
		o.PageHeight = 297
	}
	if o.Margin <= 0 {
		o.Margin = 20
	}
	if o.NoteWidth <= 0 {
		o.NoteWidth = 30
	}
	if o.Leading <= 0 {
		o.Leading = 1.3
	}
	return o
}

// Proof draws proof pages into a PDF.
type Proof struct {
	m    *Measurer
	opts ProofOptions
	ink  color.Color
}

var _ renderer.Renderer = (*Proof)(nil)

// NewProof creates a proof renderer drawing text with m's fonts.
func NewProof(m *Measurer, opts ProofOptions) *Proof {
	return &Proof{m: m, opts: opts.withDefaults(), ink: canvas.Hex("#1e1e1e")}
}

// TextWidth is the width of the main text column in points.
func (p *Proof) TextWidth() float64 {
	o := p.opts
	return (o.PageWidth - 2*o.Margin - o.NoteWidth) * layout.MmToPt
}

// Render renders the pages into a PDF byte slice.
func (p *Proof) Render(pages []renderer.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	o := p.opts
	var buf bytes.Buffer
	writer := pdf.New(&buf, o.PageWidth, o.PageHeight, nil)
	for i, page := range pages {
		if i > 0 {
			writer.NewPage(o.PageWidth, o.PageHeight)
		}
		c := canvas.New(o.PageWidth, o.PageHeight)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，y 向下

		if err := p.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Proof) drawPage(ctx *canvas.Context, page renderer.Page) error {
	o := p.opts
	left := o.Margin
	width := o.PageWidth - 2*o.Margin - o.NoteWidth
	y := o.Margin
	baselines := map[int]float64{}

	for _, it := range page.Items {
		switch {
		case it.IsLine():
			name := ""
			if it.Meta != nil {
				name = it.Meta.Style
			}
			y += p.styledLineHeight(name, it.Items)
			if err := p.drawLine(ctx, it, left, width, y); err != nil {
				return err
			}
			baselines[it.LineNumber()] = y
		case it.IsGlue():
			y += it.Width * layout.PtToMm
		}
	}

	noteX := left + width + 4
	for _, rec := range page.Marginalia {
		ny, ok := baselines[rec.Line]
		if !ok {
			continue
		}
		for _, note := range rec.Notes {
			if _, err := p.drawItems(ctx, note, noteX, ny); err != nil {
				return err
			}
			ny += p.lineHeight(note)
		}
	}

	y += 6
	breaker := linebreak.New(linebreak.Options{LineWidth: width * layout.MmToPt})
	for _, block := range page.Apparatus {
		if len(block.Items) == 0 {
			continue
		}
		doc, err := breaker.Typeset(layout.VList(layout.HList(layout.TagParagraph, block.Items...)))
		if err != nil {
			return fmt.Errorf("校勘记 %s 断行失败: %w", block.Type, err)
		}
		for _, pg := range doc.Pages {
			for _, ln := range pg.Items {
				if !ln.IsLine() {
					continue
				}
				y += p.styledLineHeight(style.Apparatus, ln.Items)
				if err := p.drawLine(ctx, ln, left, width, y); err != nil {
					return err
				}
			}
		}
		y += 3
	}
	return nil
}

// styledLineHeight is the line height of the named paragraph style in mm.
func (p *Proof) styledLineHeight(name string, items []layout.Item) float64 {
	if p.opts.Styles != nil && name != "" {
		if ps, err := p.opts.Styles.Paragraph(name); err == nil && ps.LineHeight > 0 {
			return ps.LineHeight * layout.PtToMm
		}
	}
	return p.lineHeight(items)
}

// lineHeight is the leading of the largest font on a line, in mm.
func (p *Proof) lineHeight(items []layout.Item) float64 {
	size := 0.0
	layout.Walk(items, func(it *layout.Item) bool {
		if it.Font != nil && it.Raise == 0 {
			size = math.Max(size, it.Font.Size)
		}
		return true
	})
	if size == 0 {
		size = 12
	}
	return size * p.opts.Leading * layout.PtToMm
}

// drawLine draws a physical line; right-to-left lines start at the right edge.
func (p *Proof) drawLine(ctx *canvas.Context, ln layout.Item, left, width, baseline float64) error {
	if ln.Direction != layout.DirectionRTL {
		_, err := p.drawItems(ctx, ln.Items, left, baseline)
		return err
	}
	x := left + width
	for _, it := range ln.Items {
		w := it.Width * layout.PtToMm
		if it.Fill {
			continue
		}
		x -= w
		if err := p.drawBox(ctx, it, x, baseline); err != nil {
			return err
		}
	}
	return nil
}

// drawItems draws items left to right and returns the advance in mm.
func (p *Proof) drawItems(ctx *canvas.Context, items []layout.Item, x, baseline float64) (float64, error) {
	start := x
	for _, it := range items {
		if it.Fill {
			continue
		}
		if err := p.drawBox(ctx, it, x, baseline); err != nil {
			return 0, err
		}
		x += it.Width * layout.PtToMm
	}
	return x - start, nil
}

func (p *Proof) drawBox(ctx *canvas.Context, it layout.Item, x, baseline float64) error {
	if !it.IsBox() || it.Text == "" || it.Font == nil {
		return nil
	}
	face, err := p.m.Face(*it.Font, p.ink)
	if err != nil {
		return err
	}
	ctx.DrawText(x, baseline-it.Raise*layout.PtToMm, canvas.NewTextLine(face, it.Text, canvas.Left))
	return nil
}
