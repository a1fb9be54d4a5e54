package linebreak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/scriptorium/layout"
)

var body = layout.FontSpec{Family: "Body", Size: 10}

func word(index int, text string) layout.Item {
	return layout.Box(text, float64(len(text))*5, body).WithSource(index, text)
}

func space(index int) layout.Item {
	return layout.Glue(5, 2, 1).WithSource(index, "")
}

func paragraph(items ...layout.Item) layout.Item {
	items = append(items, layout.FillGlue(), layout.Penalty(layout.PenaltyForced))
	p := layout.HList(layout.TagParagraph, items...)
	p.Direction = layout.DirectionLTR
	return p
}

func lineTexts(doc *layout.Document) []string {
	var out []string
	for _, pg := range doc.Pages {
		for _, it := range pg.Items {
			if it.IsLine() {
				out = append(out, layout.PlainText(it.Items))
			}
		}
	}
	return out
}

func TestGreedyBreaksAtGlue(t *testing.T) {
	// "the cat sat on the mat": 15+5+15+5+15 = 55 fits in 60.
	para := paragraph(
		word(0, "the"), space(1), word(2, "cat"), space(3), word(4, "sat"), space(5),
		word(6, "on"), space(7), word(8, "the"), space(9), word(10, "mat"),
	)
	doc, err := New(Options{LineWidth: 60}).Typeset(layout.VList(para))
	require.NoError(t, err)
	assert.Equal(t, []string{"the cat sat", "on the mat"}, lineTexts(doc))

	lines := doc.Pages[0].Items
	assert.Equal(t, 1, lines[0].LineNumber())
	assert.Equal(t, 2, lines[1].LineNumber())
	assert.Equal(t, layout.DirectionLTR, lines[1].Direction)
}

func TestUnbreakablePenaltyKeepsWordsTogether(t *testing.T) {
	para := paragraph(
		word(0, "aaaa"), space(1), word(2, "bbbb"),
		layout.Penalty(layout.PenaltyInfinite), space(3), word(4, "cccc"),
	)
	// 20+5+20 = 45 > 40, and "bbbb cccc" may not be split.
	doc, err := New(Options{LineWidth: 40}).Typeset(layout.VList(para))
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa", "bbbb cccc"}, lineTexts(doc))
}

func TestForcedBreakEndsParagraph(t *testing.T) {
	list := layout.VList(
		paragraph(word(0, "arma")),
		layout.Glue(6, 0, 0),
		paragraph(word(2, "virum")),
		paragraph(),
	)
	doc, err := New(Options{}).Typeset(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"arma", "virum"}, lineTexts(doc))
	require.Len(t, doc.Pages, 1)
	assert.Len(t, doc.Pages[0].Items, 3)
}

func TestOccurrencesAnnotatedPerLine(t *testing.T) {
	para := paragraph(
		word(0, "the"), space(1), word(2, "cat"), space(3), word(4, "the"),
		layout.Penalty(0),
		word(6, "the"),
	)
	doc, err := New(Options{LineWidth: 55}).Typeset(layout.VList(para))
	require.NoError(t, err)

	var got []layout.Provenance
	layout.Walk([]layout.Item{doc.Pages[0].Items[0]}, func(it *layout.Item) bool {
		if s := it.Source(); s != nil && s.Text != "" {
			got = append(got, *s)
		}
		return true
	})
	require.Len(t, got, 3)
	assert.Equal(t, [2]int{1, 2}, [2]int{got[0].OccurrenceInLine, got[0].TotalOccurrencesInLine})
	assert.Equal(t, [2]int{1, 1}, [2]int{got[1].OccurrenceInLine, got[1].TotalOccurrencesInLine})
	assert.Equal(t, [2]int{2, 2}, [2]int{got[2].OccurrenceInLine, got[2].TotalOccurrencesInLine})

	second := doc.Pages[0].Items[1]
	require.Equal(t, 2, second.LineNumber())
	assert.Equal(t, 1, second.Items[0].Source().TotalOccurrencesInLine)

	// the input list is untouched
	assert.Zero(t, para.Items[0].Source().OccurrenceInLine)
}

func TestMergeBoxesKeepsSources(t *testing.T) {
	para := paragraph(word(0, "arma"), word(1, "que"), space(2), word(3, "virum"))
	doc, err := New(Options{MergeBoxes: true}).Typeset(layout.VList(para))
	require.NoError(t, err)

	items := doc.Pages[0].Items[0].Items
	merged := items[0]
	assert.Equal(t, "armaque", merged.Text)
	assert.Nil(t, merged.Source())
	require.NotNil(t, merged.Meta)
	require.Len(t, merged.Meta.Merged, 2)
	assert.Equal(t, 1, merged.Meta.Merged[1].Source().MainTextIndex)
	assert.Equal(t, "virum", items[2].Text)
}

func TestPagination(t *testing.T) {
	var list []layout.Item
	for i := 0; i < 5; i++ {
		list = append(list, paragraph(word(i, "w")), layout.Glue(3, 0, 0))
	}
	doc, err := New(Options{LinesPerPage: 2}).Typeset(layout.VList(list...))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, 3, doc.Pages[2].Number)
	assert.Equal(t, []string{"w", "w", "w", "w", "w"}, lineTexts(doc))
	assert.True(t, doc.Pages[1].Items[0].IsLine(), "spacers are dropped at the top of a page")
}
