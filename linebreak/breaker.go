// Package linebreak is a greedy box/glue/penalty line breaker and paginator.
//
// It fills each line with as many words as fit, breaking only at glue that
// does not follow an unbreakable penalty and at finite penalties. Lines are
// numbered across the whole document and every text primitive is annotated
// with how often its text occurs on its line. Adjacent boxes of the same
// font may be merged; a merged box keeps its sources in Metadata.Merged.
package linebreak

import (
	"log/slog"
	"math"

	"github.com/ByLCY/scriptorium/layout"
)

// Options configures a Breaker. Widths are in points.
type Options struct {
	// LineWidth is the measure; <= 0 disables width-based breaking.
	LineWidth float64
	// LinesPerPage starts a new page after that many lines; <= 0 means one page.
	LinesPerPage int
	// MergeBoxes folds adjacent boxes with identical font and direction.
	MergeBoxes bool
	Logger     *slog.Logger
}

// Breaker implements layout.LineBreaker.
type Breaker struct {
	opts   Options
	logger *slog.Logger
}

var _ layout.LineBreaker = (*Breaker)(nil)

// New creates a breaker.
func New(opts Options) *Breaker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Breaker{opts: opts, logger: logger}
}

// Typeset breaks every paragraph of list into numbered lines and paginates them.
// The input list is not modified.
func (b *Breaker) Typeset(list layout.Item) (*layout.Document, error) {
	p := &paginator{perPage: b.opts.LinesPerPage}
	number := 0
	paragraphs := 0
	for _, it := range list.Items {
		if it.Kind != layout.KindHList || it.Tag != layout.TagParagraph {
			p.vertical(it.Clone())
			continue
		}
		paragraphs++
		for _, items := range b.breakParagraph(it.Items) {
			number++
			annotateOccurrences(items)
			if b.opts.MergeBoxes {
				items = mergeBoxes(items)
			}
			ln := layout.HList(layout.TagLine, items...)
			ln.Direction = it.Direction
			ln.Meta = &layout.Metadata{LineNumber: number}
			if it.Meta != nil {
				ln.Meta.Style = it.Meta.Style
			}
			p.line(ln)
		}
	}
	doc := p.document()
	b.logger.Debug("main text broken into lines",
		"paragraphs", paragraphs,
		"lines", number,
		"pages", len(doc.Pages))
	return doc, nil
}

// breakParagraph 贪心断行：在可断点处提交一个不可分的片段，超出行宽时换行。
func (b *Breaker) breakParagraph(items []layout.Item) [][]layout.Item {
	limit := b.opts.LineWidth
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var (
		lines   [][]layout.Item
		line    []layout.Item
		lineW   float64
		seg     []layout.Item
		segW    float64
		pending []layout.Item // glue before seg
		pendW   float64
		glued   bool // previous item forbids a break at the next glue
	)

	emit := func() {
		if hasBox(line) {
			lines = append(lines, line)
		}
		line, lineW = nil, 0
	}
	commit := func() {
		if len(seg) == 0 {
			return
		}
		if len(line) > 0 && lineW+pendW+segW > limit {
			emit()
		}
		if len(line) > 0 {
			line = append(line, pending...)
			lineW += pendW
		}
		line = append(line, seg...)
		lineW += segW
		seg, segW = nil, 0
		pending, pendW = nil, 0
	}

	for _, src := range items {
		it := src.Clone()
		switch it.Kind {
		case layout.KindPenalty:
			switch {
			case it.ForcedBreak():
				commit()
				line = append(line, pending...)
				pending, pendW = nil, 0
				emit()
				glued = false
			case it.Unbreakable():
				seg = append(seg, it)
				glued = true
			default:
				commit()
				glued = false
			}
		case layout.KindGlue:
			if glued {
				seg = append(seg, it)
				segW += it.Width
				glued = false
				continue
			}
			commit()
			if len(line) > 0 {
				pending = append(pending, it)
				pendW += it.Width
			}
		default:
			seg = append(seg, it)
			segW += it.Width
			glued = false
		}
	}
	commit()
	emit()
	return lines
}

func hasBox(items []layout.Item) bool {
	found := false
	layout.Walk(items, func(it *layout.Item) bool {
		if it.IsBox() && it.Text != "" {
			found = true
		}
		return !found
	})
	return found
}

// paginator distributes lines and vertical material over pages.
type paginator struct {
	perPage int
	pages   []layout.Page
	lines   int
}

func (p *paginator) current() *layout.Page {
	if len(p.pages) == 0 {
		p.pages = append(p.pages, layout.Page{Number: 1})
	}
	return &p.pages[len(p.pages)-1]
}

func (p *paginator) line(ln layout.Item) {
	if p.perPage > 0 && p.lines == p.perPage {
		p.pages = append(p.pages, layout.Page{Number: len(p.pages) + 1})
		p.lines = 0
	}
	pg := p.current()
	pg.Items = append(pg.Items, ln)
	p.lines++
}

// vertical adds spacers; they are dropped at the top of a page.
func (p *paginator) vertical(it layout.Item) {
	if p.perPage > 0 && p.lines == p.perPage {
		return
	}
	pg := p.current()
	if len(pg.Items) == 0 && len(p.pages) > 1 {
		return
	}
	pg.Items = append(pg.Items, it)
}

func (p *paginator) document() *layout.Document {
	p.current()
	return &layout.Document{Pages: p.pages}
}
