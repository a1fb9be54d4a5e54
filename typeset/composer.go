// Package typeset turns styled text into measured layout primitives.
package typeset

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/script"
	"github.com/ByLCY/scriptorium/style"
)

// Sheet is the part of a style sheet the composer needs.
type Sheet interface {
	Paragraph(name string) (style.ParagraphStyle, error)
	Text(names ...string) style.TextStyle
	String(key string) string
	Substitutions() []style.Substitution
}

var _ Sheet = (*style.Sheet)(nil)

// Composer measures styled text with the injected measurer.
type Composer struct {
	Sheet    Sheet
	Measurer layout.TextMeasurer
	Detector script.Detector
}

// New creates a composer. A nil detector uses script.UnicodeDetector.
func New(sheet Sheet, m layout.TextMeasurer, d script.Detector) *Composer {
	if d == nil {
		d = script.UnicodeDetector{}
	}
	return &Composer{Sheet: sheet, Measurer: m, Detector: d}
}

// Text returns a measured box for text in the merged styles.
func (c *Composer) Text(text string, styles ...string) (layout.Item, error) {
	ts := c.Sheet.Text(styles...)
	w, err := c.measure(text, ts.Font)
	if err != nil {
		return layout.Item{}, err
	}
	it := layout.Box(text, w, ts.Font)
	it.Raise = ts.Raise
	return it, nil
}

// Run returns a box whose direction is resolved against the paragraph
// direction: an explicit dir wins, otherwise it is detected from the text.
func (c *Composer) Run(text string, paragraph, explicit layout.Direction, styles ...string) (layout.Item, error) {
	it, err := c.Text(text, styles...)
	if err != nil {
		return layout.Item{}, err
	}
	if explicit != layout.DirectionUnset {
		it.Direction = explicit
	} else {
		it.Direction = script.RunDirection(text, paragraph, c.Detector)
	}
	return it, nil
}

// Superscript returns a raised box (hand numbers, occurrence numbers).
func (c *Composer) Superscript(text string, styles ...string) (layout.Item, error) {
	return c.Text(text, append(append([]string(nil), styles...), style.Superscript)...)
}

// Space returns breakable inter-word glue sized from a measured space.
func (c *Composer) Space(styles ...string) (layout.Item, error) {
	ts := c.Sheet.Text(styles...)
	w, err := c.measure(" ", ts.Font)
	if err != nil {
		return layout.Item{}, err
	}
	return layout.Glue(w, w/2, w/3), nil
}

// WordGlue returns the inter-word glue of a paragraph style.
func (c *Composer) WordGlue(ps style.ParagraphStyle) (layout.Item, error) {
	w := ps.WordSpace
	if w == 0 {
		var err error
		if w, err = c.measure(" ", ps.Font); err != nil {
			return layout.Item{}, err
		}
	}
	stretch, shrink := ps.WordStretch, ps.WordShrink
	if stretch == 0 {
		stretch = w / 2
	}
	if shrink == 0 {
		shrink = w / 3
	}
	return layout.Glue(w, stretch, shrink), nil
}

// FmtText renders formatted text. Whitespace inside runs becomes breakable
// glue; adjacent runs are not separated. Every box gets a resolved direction.
func (c *Composer) FmtText(ft edition.FmtText, paragraph layout.Direction, styles ...string) ([]layout.Item, error) {
	var out []layout.Item
	for _, run := range ft {
		runStyles := append([]string(nil), styles...)
		if run.Bold {
			runStyles = append(runStyles, style.Bold)
		}
		if run.Italic {
			runStyles = append(runStyles, style.Italic)
		}
		if run.Superscript {
			runStyles = append(runStyles, style.Superscript)
		}
		if run.Subscript {
			runStyles = append(runStyles, style.Subscript)
		}
		for _, piece := range splitSpaces(run.Text) {
			if piece == " " {
				g, err := c.Space(styles...)
				if err != nil {
					return nil, err
				}
				out = append(out, g)
				continue
			}
			it, err := c.Run(piece, paragraph, layout.DirectionUnset, runStyles...)
			if err != nil {
				return nil, err
			}
			out = append(out, it)
		}
	}
	return out, nil
}

// SubstituteFonts applies the sheet's substitution rules to every box of the
// tree, based on the script detected in the box text. Substituted boxes are
// measured again.
func (c *Composer) SubstituteFonts(items []layout.Item) error {
	rules := c.Sheet.Substitutions()
	if len(rules) == 0 {
		return nil
	}
	byScript := make(map[string]string, len(rules))
	for _, r := range rules {
		byScript[r.Script] = r.Family
	}
	var firstErr error
	layout.Walk(items, func(it *layout.Item) bool {
		if firstErr != nil {
			return false
		}
		if !it.IsBox() || it.Text == "" || it.Font == nil {
			return true
		}
		s, ok := c.Detector.Detect(it.Text)
		if !ok {
			return true
		}
		family, ok := byScript[s.String()]
		if !ok || family == it.Font.Family {
			return true
		}
		f := *it.Font
		f.Family = family
		w, err := c.measure(it.Text, f)
		if err != nil {
			firstErr = err
			return false
		}
		it.Font = &f
		it.Width = w
		return true
	})
	return firstErr
}

func (c *Composer) measure(text string, font layout.FontSpec) (float64, error) {
	if c.Measurer == nil {
		return 0, fmt.Errorf("typeset: 缺少文本测量服务")
	}
	w, err := c.Measurer.Width(layout.TextRun{Text: text, Font: font})
	if err != nil {
		return 0, fmt.Errorf("测量文本 %q 失败: %w", text, err)
	}
	return w, nil
}

// splitSpaces splits s into words and single " " markers for each whitespace run.
func splitSpaces(s string) []string {
	var out []string
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if b.Len() > 0 {
				out = append(out, b.String())
				b.Reset()
			}
			if !inSpace {
				out = append(out, " ")
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
