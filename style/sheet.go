// Package style resolves named paragraph and inline styles, the localized
// string table and font substitution rules from a style sheet.
package style

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ByLCY/scriptorium/dsl"
	"github.com/ByLCY/scriptorium/layout"
)

//go:embed default.sheet
var defaultSheet string

// Style names used by the layout engine.
const (
	Normal               = "normal"
	NumberingLabel       = "numberingLabel"
	Apparatus            = "apparatus"
	ApparatusLineNumbers = "apparatusLineNumbers"
	Lemma                = "lemma"
	Keyword              = "keyword"
	Sigla                = "sigla"
	Superscript          = "superscript"
	Subscript            = "subscript"
	Bold                 = "bold"
	Italic               = "italic"
	Marginalia           = "marginalia"
)

// String table keys.
const (
	StrOmission           = "omission"
	StrAddition           = "addition"
	StrAnte               = "ante"
	StrPost               = "post"
	StrLemmaSeparator     = "lemmaSeparator"
	StrEntrySeparator     = "entrySeparator"
	StrLineRangeSeparator = "lineRangeSeparator"
	StrFoliationMarker    = "foliationMarker"
)

const (
	defaultFamily = "Body"
	defaultSize   = 12.0
)

// ErrUnknownStyle is returned for style names the sheet does not define.
var ErrUnknownStyle = errors.New("style: unknown style")

// Align is a paragraph alignment.
type Align string

const (
	AlignJustified Align = "justified"
	AlignLeft      Align = "left"
	AlignRight     Align = "right"
	AlignCenter    Align = "center"
)

// ParagraphStyle is a resolved paragraph style; all lengths are in points.
type ParagraphStyle struct {
	Name        string
	Font        layout.FontSpec
	Indent      float64
	SpaceBefore float64
	SpaceAfter  float64
	Align       Align
	LineHeight  float64
	// WordSpace is the natural inter-word glue width; 0 means "measure a space".
	WordSpace   float64
	WordStretch float64
	WordShrink  float64
}

// TextStyle is a resolved inline style.
type TextStyle struct {
	Font  layout.FontSpec
	Raise float64
}

// FontResource describes a font file declared in the sheet.
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Substitution replaces the font family of runs detected in Script.
type Substitution struct {
	Script string `json:"script"`
	Family string `json:"family"`
}

// Sheet is a resolved style sheet. It is immutable once built.
type Sheet struct {
	name    string
	styles  map[string]map[string]string
	strings map[string]string
	fonts   map[string]FontResource
	subs    []Substitution
}

type rawStyle struct {
	extends string
	props   map[string]string
}

// Default returns the built-in sheet.
func Default() *Sheet {
	s, err := build(nil)
	if err != nil {
		panic(fmt.Sprintf("style: 内置样式表无效: %v", err))
	}
	return s
}

// Parse reads a sheet whose declarations are layered over the built-in sheet.
func Parse(r io.Reader) (*Sheet, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析样式表失败: %w", err)
	}
	return build(doc)
}

// LoadFile parses the sheet at path.
func LoadFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开样式表 %s: %w", path, err)
	}
	defer f.Close()
	doc, err := dsl.ParseFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("解析样式表 %s 失败: %w", path, err)
	}
	return build(doc)
}

func build(user *dsl.Sheet) (*Sheet, error) {
	base, err := dsl.ParseString(defaultSheet)
	if err != nil {
		return nil, err
	}
	s := &Sheet{
		name:    base.Name,
		strings: map[string]string{},
		fonts:   map[string]FontResource{},
	}
	raw := map[string]rawStyle{}
	collect(base, s, raw)
	if user != nil {
		s.name = user.Name
		collect(user, s, raw)
	}
	resolved, err := resolveStyles(raw)
	if err != nil {
		return nil, err
	}
	s.styles = resolved
	return s, nil
}

func collect(doc *dsl.Sheet, s *Sheet, raw map[string]rawStyle) {
	for _, sec := range doc.Sections {
		switch {
		case sec.Strings != nil:
			for k, v := range sec.Strings.Props.Map() {
				s.strings[k] = v
			}
		case sec.Fonts != nil:
			for _, f := range sec.Fonts.Fonts {
				props := f.Props.Map()
				s.fonts[f.Name] = FontResource{
					Name:     f.Name,
					Src:      props["src"],
					Style:    props["style"],
					Fallback: props["fallback"],
				}
			}
		case sec.Style != nil:
			raw[sec.Style.Name] = rawStyle{extends: sec.Style.Extends, props: sec.Style.Props.Map()}
		case sec.Substitute != nil:
			family := sec.Substitute.Props.Map()["font"]
			if family == "" {
				continue
			}
			s.subs = append(s.subs, Substitution{Script: sec.Substitute.Script, Family: family})
		}
	}
}

// resolveStyles flattens extends chains; a child's props override its parent's.
func resolveStyles(styles map[string]rawStyle) (map[string]map[string]string, error) {
	resolved := map[string]map[string]string{}
	visiting := map[string]bool{}

	var dfs func(name string) (map[string]string, error)
	dfs = func(name string) (map[string]string, error) {
		if props, ok := resolved[name]; ok {
			return props, nil
		}
		st, ok := styles[name]
		if !ok {
			return nil, fmt.Errorf("style %s 未定义: %w", name, ErrUnknownStyle)
		}
		if visiting[name] {
			return nil, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if st.extends != "" {
			parent, err := dfs(st.extends)
			if err != nil {
				return nil, err
			}
			for k, v := range parent {
				props[k] = v
			}
		}
		for k, v := range st.props {
			props[k] = v
		}
		resolved[name] = props
		delete(visiting, name)
		return props, nil
	}

	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// Has reports whether a style is defined.
func (s *Sheet) Has(name string) bool {
	_, ok := s.styles[name]
	return ok
}

// Paragraph resolves a paragraph style. Unknown names return ErrUnknownStyle.
func (s *Sheet) Paragraph(name string) (ParagraphStyle, error) {
	props, ok := s.styles[name]
	if !ok {
		return ParagraphStyle{}, fmt.Errorf("paragraph style %q: %w", name, ErrUnknownStyle)
	}
	ts := s.Text(name)
	size := ts.Font.Size
	ps := ParagraphStyle{
		Name:       name,
		Font:       ts.Font,
		Align:      parseAlign(props["align"]),
		LineHeight: size * 1.4,
	}
	ps.Indent = lengthProp(props, "indent", size)
	ps.SpaceBefore = lengthProp(props, "space-before", size)
	ps.SpaceAfter = lengthProp(props, "space-after", size)
	ps.WordSpace = lengthProp(props, "word-space", size)
	ps.WordStretch = lengthProp(props, "word-stretch", size)
	ps.WordShrink = lengthProp(props, "word-shrink", size)
	if v := props["line-height"]; v != "" {
		if lh, ok := layout.ParseLineHeight(v); ok {
			ps.LineHeight = lh.Resolve(size)
		}
	}
	return ps, nil
}

// Text merges the named styles left to right over the body font. Unknown
// names are skipped. em lengths refer to the size in effect before the style
// that uses them.
func (s *Sheet) Text(names ...string) TextStyle {
	ts := TextStyle{Font: layout.FontSpec{Family: defaultFamily, Size: defaultSize}}
	for _, name := range names {
		props, ok := s.styles[name]
		if !ok {
			continue
		}
		base := ts.Font.Size
		if v := props["font"]; v != "" {
			ts.Font.Family = v
		}
		if v := props["size"]; v != "" {
			if l, ok := layout.ParseLength(v); ok && l.Value > 0 {
				ts.Font.Size = l.Points(base)
			}
		}
		if v := props["style"]; v != "" {
			ts.Font.Style = combineFontStyle(ts.Font.Style, v)
		}
		if v := props["raise"]; v != "" {
			if l, ok := layout.ParseLength(v); ok {
				ts.Raise += l.Points(base)
			}
		}
	}
	return ts
}

// String returns the localized string for key, or key itself.
func (s *Sheet) String(key string) string {
	if v, ok := s.strings[key]; ok {
		return v
	}
	return key
}

// Strings returns a copy of the string table.
func (s *Sheet) Strings() map[string]string {
	out := make(map[string]string, len(s.strings))
	for k, v := range s.strings {
		out[k] = v
	}
	return out
}

// Fonts returns the declared font resources.
func (s *Sheet) Fonts() map[string]FontResource {
	out := make(map[string]FontResource, len(s.fonts))
	for k, v := range s.fonts {
		out[k] = v
	}
	return out
}

// Substitutions returns the font substitution rules in declaration order.
func (s *Sheet) Substitutions() []Substitution {
	return append([]Substitution(nil), s.subs...)
}

func lengthProp(props map[string]string, key string, size float64) float64 {
	v := props[key]
	if v == "" {
		return 0
	}
	l, ok := layout.ParseLength(v)
	if !ok {
		return 0
	}
	return l.Points(size)
}

func parseAlign(v string) Align {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "start":
		return AlignLeft
	case "right", "end":
		return AlignRight
	case "center", "centre":
		return AlignCenter
	default:
		return AlignJustified
	}
}

func combineFontStyle(current, next string) string {
	next = strings.ToLower(strings.TrimSpace(next))
	if next == "regular" || next == "normal" || current == "" {
		return next
	}
	if strings.Contains(current, next) {
		return current
	}
	return current + " " + next
}
