// Package compiler turns the main text of an edition into a vertical list of
// paragraph lists ready for line breaking.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/script"
	"github.com/ByLCY/scriptorium/style"
	"github.com/ByLCY/scriptorium/typeset"
)

// orphanGlues is the number of final inter-word glues of a paragraph that
// may not break.
const orphanGlues = 3

// Options configures a Compiler.
type Options struct {
	Detector script.Detector
	Reporter diag.Reporter
	Logger   *slog.Logger
}

// Compiler compiles main text.
type Compiler struct {
	composer *typeset.Composer
	sheet    typeset.Sheet
	reporter diag.Reporter
	logger   *slog.Logger
}

// New creates a compiler using sheet for styles and m for text widths.
func New(sheet typeset.Sheet, m layout.TextMeasurer, opts Options) *Compiler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NewCollector(logger)
	}
	return &Compiler{
		composer: typeset.New(sheet, m, opts.Detector),
		sheet:    sheet,
		reporter: reporter,
		logger:   logger,
	}
}

// Composer returns the composer shared with apparatus typesetting.
func (c *Compiler) Composer() *typeset.Composer { return c.composer }

// Compile returns the vertical list of the edition's main text. Only
// measurer and style sheet failures are returned as errors.
func (c *Compiler) Compile(ed *edition.Edition) (layout.Item, error) {
	dir := script.Direction(ed.Lang)
	markers := foliationMarkers(ed)
	paras := Partition(ed.MainText)

	root := layout.VList()
	root.Direction = dir
	for i, p := range paras {
		items, err := c.paragraph(p, dir, markers)
		if err != nil {
			return layout.Item{}, fmt.Errorf("编译第 %d 段失败: %w", i+1, err)
		}
		root.Items = append(root.Items, items...)
	}
	if err := c.composer.SubstituteFonts(root.Items); err != nil {
		return layout.Item{}, fmt.Errorf("字体替换失败: %w", err)
	}
	c.logger.Debug("main text compiled",
		"tokens", len(ed.MainText),
		"paragraphs", len(paras),
		"direction", string(dir))
	return root, nil
}

// foliationMarkers returns the main-text indices that get a "|" marker: a
// marginalia entry spans exactly that token and has an enabled automatic
// foliation sub-entry with a real foliation change.
func foliationMarkers(ed *edition.Edition) map[int]bool {
	out := map[int]bool{}
	for i := range ed.Apparatuses {
		app := &ed.Apparatuses[i]
		if !app.IsMarginalia() {
			continue
		}
		for j := range app.Entries {
			e := &app.Entries[j]
			if !e.SingleToken() {
				continue
			}
			for _, se := range e.SubEntries {
				if se.Enabled && se.Type == edition.SubEntryAutoFoliation && se.HasRealFoliationChange() {
					out[e.From] = true
					break
				}
			}
		}
	}
	return out
}

// paragraphStyle resolves name, falling back to the normal style.
func (c *Compiler) paragraphStyle(name string) (style.ParagraphStyle, error) {
	ps, err := c.sheet.Paragraph(name)
	if err == nil {
		return ps, nil
	}
	if !errors.Is(err, style.ErrUnknownStyle) {
		return style.ParagraphStyle{}, err
	}
	c.reporter.Report(diag.Diagnostic{
		Code:    diag.UnknownParagraphStyle,
		Message: "unknown paragraph style, using normal",
		Attrs:   map[string]any{"style": name},
	})
	return c.sheet.Paragraph(style.Normal)
}

// paragraph emits the optional spacers and the paragraph list.
func (c *Compiler) paragraph(p Paragraph, dir layout.Direction, markers map[int]bool) ([]layout.Item, error) {
	ps, err := c.paragraphStyle(p.Style)
	if err != nil {
		return nil, err
	}
	var out []layout.Item
	if ps.SpaceBefore != 0 {
		out = append(out, spacer(ps.SpaceBefore))
	}

	para := layout.HList(layout.TagParagraph)
	para.Direction = dir
	para.Meta = &layout.Metadata{Style: ps.Name}

	var indent *layout.Item
	if ps.Indent != 0 {
		box := layout.EmptyBox(ps.Indent)
		box.Tag = layout.TagIndent
		indent = &box
	}
	if indent != nil && dir != layout.DirectionRTL {
		para.Items = append(para.Items, *indent)
	}
	if ps.Align == style.AlignCenter {
		para.Items = append(para.Items, layout.EmptyBox(0), layout.FillGlue())
	}

	guarded := orphanGuarded(p.Tokens)
	for _, tok := range p.Tokens {
		items, err := c.token(tok, ps, dir, markers, guarded)
		if err != nil {
			return nil, err
		}
		para.Items = append(para.Items, items...)
	}

	if indent != nil && dir == layout.DirectionRTL {
		para.Items = append(para.Items, *indent)
	}
	para.Items = append(para.Items, layout.FillGlue(), layout.Penalty(layout.PenaltyForced))
	out = append(out, para)

	if ps.SpaceAfter != 0 {
		out = append(out, spacer(ps.SpaceAfter))
	}
	return out, nil
}

// orphanGuarded returns the indices of the final inter-word glues.
func orphanGuarded(tokens []edition.Token) map[int]bool {
	out := map[int]bool{}
	for i := len(tokens) - 1; i >= 0 && len(out) < orphanGlues; i-- {
		if tokens[i].Type == edition.TokenGlue {
			out[tokens[i].OriginalIndex] = true
		}
	}
	return out
}

func (c *Compiler) token(tok edition.Token, ps style.ParagraphStyle, dir layout.Direction, markers, guarded map[int]bool) ([]layout.Item, error) {
	idx := tok.OriginalIndex
	switch tok.Type {
	case edition.TokenGlue:
		g, err := c.composer.WordGlue(ps)
		if err != nil {
			return nil, err
		}
		g = g.WithSource(idx, "")
		if guarded[idx] {
			return []layout.Item{layout.Penalty(layout.PenaltyInfinite), g}, nil
		}
		return []layout.Item{g}, nil

	case edition.TokenNumberingLabel:
		text := tok.Text.Plain()
		if text == "" {
			return nil, nil
		}
		box, err := c.composer.Run(text, dir, dir, ps.Name, style.NumberingLabel)
		if err != nil {
			return nil, err
		}
		return []layout.Item{box.WithSource(idx, text)}, nil

	case edition.TokenText:
		var out []layout.Item
		if markers[idx] {
			marker, err := c.composer.Run(c.sheet.String(style.StrFoliationMarker), dir, dir, ps.Name)
			if err != nil {
				return nil, err
			}
			marker.Tag = layout.TagMarker
			g, err := c.composer.WordGlue(ps)
			if err != nil {
				return nil, err
			}
			out = append(out, marker, layout.Penalty(layout.PenaltyInfinite), g)
		}
		runs, err := c.composer.FmtText(tok.Text, dir, ps.Name)
		if err != nil {
			return nil, err
		}
		if len(runs) > 0 {
			runs[0] = runs[0].WithSource(idx, tok.Text.Plain())
		}
		return append(out, runs...), nil

	case edition.TokenEmpty, edition.TokenFoliationChangeMarker, edition.TokenParagraphEnd:
		return nil, nil

	default:
		c.reporter.Report(diag.Diagnostic{
			Code:    diag.UnknownTokenType,
			Message: "unknown main-text token type, skipped",
			Attrs:   map[string]any{"index": idx, "type": tok.Type.String()},
		})
		return nil, nil
	}
}

func spacer(h float64) layout.Item {
	g := layout.Glue(h, 0, 0)
	g.Tag = layout.TagSpacer
	return g
}
