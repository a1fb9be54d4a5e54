// Package canvasrenderer measures and draws layout primitives with
// github.com/tdewolff/canvas.
package canvasrenderer

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/style"
)

// Resource is a font file given either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
	// Style is the style the file provides, e.g. "bold italic".
	Style string
}

// Options configures a Measurer.
type Options struct {
	// BaseDir resolves relative font paths.
	BaseDir string
	// Fonts maps a family name to its file. A key "Family:style" (e.g.
	// "Body:bold") provides a dedicated file for that style.
	Fonts map[string]Resource
	// Fallback is used when a family cannot be loaded. Latin Modern Roman
	// is used when it is empty.
	Fallback Resource
}

// FontsFromSheet converts the font declarations of a style sheet.
func FontsFromSheet(fonts map[string]style.FontResource) map[string]Resource {
	out := make(map[string]Resource, len(fonts))
	for name, f := range fonts {
		if f.Src == "" {
			continue
		}
		key := name
		if st := normalizeStyle(f.Style); st != "" && st != "regular" {
			key = name + ":" + st
		}
		out[key] = Resource{Path: f.Src, Style: f.Style}
	}
	return out
}

// Measurer implements layout.TextMeasurer with canvas font faces. Loaded
// families are cached; it is safe for concurrent use.
type Measurer struct {
	baseDir  string
	fonts    map[string]Resource
	fallback Resource

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var _ layout.TextMeasurer = (*Measurer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// NewMeasurer creates a measurer.
func NewMeasurer(opts Options) *Measurer {
	fonts := make(map[string]Resource, len(opts.Fonts))
	for k, v := range opts.Fonts {
		fonts[k] = v
	}
	return &Measurer{
		baseDir:      opts.BaseDir,
		fonts:        fonts,
		fallback:     opts.Fallback,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

// Width returns the advance width of run in points.
func (m *Measurer) Width(run layout.TextRun) (float64, error) {
	if run.Text == "" {
		return 0, nil
	}
	face, err := m.Face(run.Font, color.Black)
	if err != nil {
		return 0, err
	}
	// canvas 以 mm 计量，布局原语统一使用 pt
	return face.TextWidth(run.Text) * layout.MmToPt, nil
}

// Face returns a canvas face for font; the size is in points.
func (m *Measurer) Face(font layout.FontSpec, col color.Color) (*canvas.FontFace, error) {
	family, st, err := m.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	size := font.Size
	if size <= 0 {
		size = 12
	}
	return family.Face(size, col, st, canvas.FontNormal), nil
}

// resource finds the file of a family and style, preferring a dedicated
// style file.
func (m *Measurer) resource(font layout.FontSpec) (string, Resource, bool) {
	if st := normalizeStyle(font.Style); st != "" && st != "regular" {
		key := font.Family + ":" + st
		if res, ok := m.fonts[key]; ok {
			return key, res, true
		}
	}
	res, ok := m.fonts[font.Family]
	return font.Family, res, ok
}

func (m *Measurer) ensureFontFamily(font layout.FontSpec) (*canvas.FontFamily, canvas.FontStyle, error) {
	key, res, found := m.resource(font)
	cacheKey := key + "|" + normalizeStyle(font.Style)

	m.fontMu.Lock()
	defer m.fontMu.Unlock()

	if entry, ok := m.fontFamilies[cacheKey]; ok {
		return entry.family, entry.style, nil
	}

	// a file without a declared style serves every requested style
	st := parseFontStyle(font.Style)
	if res.Style != "" {
		st = parseFontStyle(res.Style)
	}
	var loadErr error
	if found {
		family := canvas.NewFontFamily(key)
		if loadErr = m.loadFontIntoFamily(family, res, st); loadErr == nil {
			m.fontFamilies[cacheKey] = &fontFamilyEntry{family: family, style: st}
			return family, st, nil
		}
	} else {
		loadErr = fmt.Errorf("字体 %s 未声明", font.Family)
	}

	fallback, err := m.fallbackLocked()
	if err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("%v; 回退字体不可用: %w", loadErr, err)
	}
	m.fontFamilies[cacheKey] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
	return fallback, canvas.FontRegular, nil
}

func (m *Measurer) loadFontIntoFamily(family *canvas.FontFamily, res Resource, st canvas.FontStyle) error {
	data, err := m.loadFontBytes(res)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, st)
}

func (m *Measurer) loadFontBytes(res Resource) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path == "" {
		return nil, fmt.Errorf("字体资源缺少 src")
	}
	path := res.Path
	if !filepath.IsAbs(path) && m.baseDir != "" {
		path = filepath.Join(m.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", res.Path, err)
	}
	return data, nil
}

func (m *Measurer) fallbackLocked() (*canvas.FontFamily, error) {
	if m.fallbackFamily != nil {
		return m.fallbackFamily, nil
	}
	data := lmroman10regular.TTF
	if m.fallback.Path != "" || len(m.fallback.Bytes) > 0 {
		var err error
		if data, err = m.loadFontBytes(m.fallback); err != nil {
			return nil, err
		}
	}
	family := canvas.NewFontFamily("scriptorium-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	m.fallbackFamily = family
	return family, nil
}

func normalizeStyle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	bold := strings.Contains(s, "bold")
	italic := strings.Contains(s, "italic") || strings.Contains(s, "oblique")
	switch {
	case bold && italic:
		return "bold italic"
	case bold:
		return "bold"
	case italic:
		return "italic"
	case s == "":
		return ""
	default:
		return "regular"
	}
}

func parseFontStyle(s string) canvas.FontStyle {
	l := strings.ToLower(s)
	result := canvas.FontRegular
	switch {
	case strings.Contains(l, "black"):
		result = canvas.FontBlack
	case strings.Contains(l, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(l, "semibold"), strings.Contains(l, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(l, "bold"):
		result = canvas.FontBold
	case strings.Contains(l, "medium"):
		result = canvas.FontMedium
	case strings.Contains(l, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(l, "italic") || strings.Contains(l, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
