package compiler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/style"
)

type runeMeasurer struct{}

func (runeMeasurer) Width(run layout.TextRun) (float64, error) {
	return float64(utf8.RuneCountInString(run.Text)) * run.Font.Size / 2, nil
}

func words(ws ...string) []edition.Token {
	var out []edition.Token
	for i, w := range ws {
		if i > 0 {
			out = append(out, edition.Token{Type: edition.TokenGlue})
		}
		out = append(out, edition.Token{Type: edition.TokenText, Text: edition.Plain(w)})
	}
	return out
}

func end(styleName string) edition.Token {
	return edition.Token{Type: edition.TokenParagraphEnd, Style: styleName}
}

func newCompiler(t *testing.T) (*Compiler, *diag.Collector) {
	t.Helper()
	col := diag.NewCollector(nil)
	return New(style.Default(), runeMeasurer{}, Options{Reporter: col}), col
}

func TestPartitionCountAndOrder(t *testing.T) {
	var tokens []edition.Token
	tokens = append(tokens, words("arma", "virum")...)
	tokens = append(tokens, end("heading"), end(""))
	tokens = append(tokens, words("cano")...)

	paras := Partition(tokens)
	require.Len(t, paras, 3)
	assert.Equal(t, "heading", paras[0].Style)
	assert.Equal(t, style.Normal, paras[1].Style)
	assert.Empty(t, paras[1].Tokens)
	assert.Equal(t, style.Normal, paras[2].Style)

	var got []int
	for _, p := range paras {
		for _, tok := range p.Tokens {
			got = append(got, tok.OriginalIndex)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 5}, got)
}

func TestPartitionEmpty(t *testing.T) {
	paras := Partition(nil)
	require.Len(t, paras, 1)
	assert.Empty(t, paras[0].Tokens)
}

// paragraphs returns the paragraph lists of a compiled main text.
func paragraphs(root layout.Item) []layout.Item {
	var out []layout.Item
	for _, it := range root.Items {
		if it.Kind == layout.KindHList && it.Tag == layout.TagParagraph {
			out = append(out, it)
		}
	}
	return out
}

func TestCompileOrphanRule(t *testing.T) {
	c, _ := newCompiler(t)
	ed := &edition.Edition{Lang: "la", MainText: words("arma", "virumque", "cano", "Troiae", "qui")}

	root, err := c.Compile(ed)
	require.NoError(t, err)
	paras := paragraphs(root)
	require.Len(t, paras, 1)

	items := paras[0].Items
	var glueIdx []int
	for i, it := range items {
		if it.IsGlue() && it.Source() != nil {
			glueIdx = append(glueIdx, i)
		}
	}
	require.Len(t, glueIdx, 4)
	assert.False(t, items[glueIdx[0]-1].IsPenalty(), "first glue may break")
	for _, i := range glueIdx[1:] {
		assert.True(t, items[i-1].Unbreakable(), "glue at %d must be guarded", i)
	}

	last := items[len(items)-1]
	assert.True(t, last.ForcedBreak())
	assert.True(t, items[len(items)-2].Fill)
}

func TestCompileTagsLogicalIndices(t *testing.T) {
	c, _ := newCompiler(t)
	ed := &edition.Edition{Lang: "la", MainText: []edition.Token{
		{Type: edition.TokenNumberingLabel, Text: edition.Plain("1.")},
		{Type: edition.TokenGlue},
		{Type: edition.TokenText, Text: edition.FmtText{{Text: "arma "}, {Text: "virum", Italic: true}}},
		{Type: edition.TokenEmpty},
		{Type: edition.TokenFoliationChangeMarker},
	}}
	root, err := c.Compile(ed)
	require.NoError(t, err)

	var tagged []layout.Provenance
	layout.Walk(root.Items, func(it *layout.Item) bool {
		if s := it.Source(); s != nil {
			tagged = append(tagged, *s)
		}
		return true
	})
	require.Len(t, tagged, 3)
	assert.Equal(t, 0, tagged[0].MainTextIndex)
	assert.Equal(t, "1.", tagged[0].Text)
	assert.Equal(t, 1, tagged[1].MainTextIndex)
	assert.Equal(t, 2, tagged[2].MainTextIndex)
	assert.Equal(t, "arma virum", tagged[2].Text)
}

func TestCompileFoliationMarker(t *testing.T) {
	c, _ := newCompiler(t)
	ed := &edition.Edition{
		Lang:     "la",
		MainText: words("arma", "virum"),
		Apparatuses: []edition.Apparatus{{
			Type: edition.ApparatusMarginalia,
			Entries: []edition.Entry{{
				From: 2,
				SubEntries: []edition.SubEntry{{
					Type:      edition.SubEntryAutoFoliation,
					Enabled:   true,
					Witnesses: []edition.WitnessData{{WitnessIndex: 0, RealFoliationChange: true}},
				}},
			}},
		}},
	}
	root, err := c.Compile(ed)
	require.NoError(t, err)
	items := paragraphs(root)[0].Items

	var markerAt = -1
	for i, it := range items {
		if it.Tag == layout.TagMarker {
			markerAt = i
			break
		}
	}
	require.NotEqual(t, -1, markerAt)
	assert.Equal(t, "|", items[markerAt].Text)
	assert.Nil(t, items[markerAt].Source())
	assert.True(t, items[markerAt+1].Unbreakable())
	assert.True(t, items[markerAt+2].IsGlue())
	next := items[markerAt+3]
	require.NotNil(t, next.Source())
	assert.Equal(t, 2, next.Source().MainTextIndex)
	assert.Equal(t, "virum", next.Text)
}

func TestCompileUnknownStyleFallsBack(t *testing.T) {
	c, col := newCompiler(t)
	ed := &edition.Edition{MainText: append(words("arma"), end("nonesuch"))}

	root, err := c.Compile(ed)
	require.NoError(t, err)
	assert.True(t, col.Has(diag.UnknownParagraphStyle))
	assert.Equal(t, style.Normal, paragraphs(root)[0].Meta.Style)
}

func TestCompileRTLIndentAndSpacers(t *testing.T) {
	sheet, err := style.Parse(stringsReader(`stylesheet T v1 {
  style verse extends normal { indent: 2em; space-before: 6pt; space-after: 3pt }
}`))
	require.NoError(t, err)
	c := New(sheet, runeMeasurer{}, Options{Reporter: diag.NewCollector(nil)})

	ed := &edition.Edition{Lang: "ar", MainText: append(words("كتاب"), end("verse"))}
	root, err := c.Compile(ed)
	require.NoError(t, err)
	assert.Equal(t, layout.DirectionRTL, root.Direction)

	require.GreaterOrEqual(t, len(root.Items), 3)
	assert.Equal(t, layout.TagSpacer, root.Items[0].Tag)
	assert.Equal(t, 6.0, root.Items[0].Width)
	assert.Equal(t, layout.TagSpacer, root.Items[2].Tag)

	para := root.Items[1]
	assert.Equal(t, layout.DirectionRTL, para.Items[0].Direction)
	indent := para.Items[len(para.Items)-3]
	assert.Equal(t, layout.TagIndent, indent.Tag)
	assert.Equal(t, 24.0, indent.Width)
}

func TestCompileCentered(t *testing.T) {
	c, _ := newCompiler(t)
	ed := &edition.Edition{MainText: append(words("INCIPIT"), end("center"))}
	root, err := c.Compile(ed)
	require.NoError(t, err)
	items := paragraphs(root)[0].Items
	assert.True(t, items[0].IsBox())
	assert.Zero(t, items[0].Width)
	assert.True(t, items[1].Fill)
}

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }
