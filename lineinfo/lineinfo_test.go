package lineinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/layout"
)

func word(index int, text string, occ, total int) layout.Item {
	it := layout.Box(text, 10, layout.FontSpec{Family: "Body", Size: 10}).WithSource(index, text)
	it.Meta.Source.OccurrenceInLine = occ
	it.Meta.Source.TotalOccurrencesInLine = total
	return it
}

func line(n int, items ...layout.Item) layout.Item {
	l := layout.HList(layout.TagLine, items...)
	l.Meta = &layout.Metadata{LineNumber: n}
	return l
}

func TestExtractSortsAndLooksUp(t *testing.T) {
	doc := &layout.Document{Pages: []layout.Page{
		{Number: 1, Items: []layout.Item{
			line(1, word(0, "the", 1, 2), layout.Glue(3, 1, 1).WithSource(1, ""), word(4, "the", 2, 2)),
			layout.Glue(2, 0, 0),
			line(2, word(6, "mat", 0, 0)),
		}},
		{Number: 2, Items: []layout.Item{line(3, word(2, "cat", 1, 1))}},
	}}
	x := New(diag.NewCollector(nil), nil)
	x.Extract(doc)

	infos := x.Infos()
	require.Len(t, infos, 5)
	var idx []int
	for _, in := range infos {
		idx = append(idx, in.MainTextIndex)
	}
	assert.Equal(t, []int{0, 1, 2, 4, 6}, idx)

	n, ok := x.LineNumberFor(2)
	require.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = x.LineNumberFor(5)
	assert.False(t, ok)

	occ, total, ok := x.Occurrences(4)
	require.True(t, ok)
	assert.Equal(t, 2, occ)
	assert.Equal(t, 2, total)

	occ, total, ok = x.Occurrences(6)
	require.True(t, ok)
	assert.Equal(t, 1, occ)
	assert.Equal(t, 1, total)

	_, _, ok = x.Occurrences(1)
	assert.False(t, ok, "glue has no text")

	lo, hi, ok := x.IndexRange()
	require.True(t, ok)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 6, hi)
}

func TestExtractMergedItems(t *testing.T) {
	inner := layout.Box("virumque", 20, layout.FontSpec{})
	inner.Meta = &layout.Metadata{Merged: []layout.Item{word(12, "virum", 1, 1), word(13, "que", 1, 1)}}
	merged := layout.Box("armavirumque", 30, layout.FontSpec{})
	merged.Meta = &layout.Metadata{Merged: []layout.Item{word(10, "arma", 1, 1), inner}}

	orphan := layout.Box("??", 5, layout.FontSpec{})
	orphan.Meta = &layout.Metadata{Merged: []layout.Item{layout.Box("x", 1, layout.FontSpec{})}}

	col := diag.NewCollector(nil)
	x := New(col, nil)
	x.Extract(&layout.Document{Pages: []layout.Page{{Items: []layout.Item{line(7, merged, orphan)}}}})

	infos := x.Infos()
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Merged)
	assert.Equal(t, 10, infos[0].MainTextIndex)
	assert.Equal(t, []int{10, 12, 13}, infos[0].MergedIndices)
	assert.True(t, col.Has(diag.MergedWithoutSources))

	n, ok := x.LineNumberFor(13)
	require.True(t, ok)
	assert.Equal(t, 7, n)
	_, _, ok = x.Occurrences(13)
	assert.False(t, ok)

	lo, hi, ok := x.IndexRange()
	require.True(t, ok)
	assert.Equal(t, 10, lo)
	assert.Equal(t, 13, hi)
}

func TestExtractDropsCorruptOccurrences(t *testing.T) {
	col := diag.NewCollector(nil)
	x := New(col, nil)
	x.Extract(&layout.Document{Pages: []layout.Page{{Items: []layout.Item{
		line(1, word(0, "arma", 3, 2), word(1, "virum", 1, 1)),
	}}}})

	require.Len(t, x.Infos(), 1)
	assert.Equal(t, 1, x.Infos()[0].MainTextIndex)
	assert.True(t, col.Has(diag.CorruptOccurrence))
}

func TestExtractStartsNewEpoch(t *testing.T) {
	x := New(nil, nil)
	assert.False(t, x.Extracted())
	e0 := x.Epoch()

	x.Extract(&layout.Document{Pages: []layout.Page{{Items: []layout.Item{line(1, word(0, "a", 1, 1))}}}})
	assert.True(t, x.Extracted())
	assert.Greater(t, x.Epoch(), e0)
	e1 := x.Epoch()

	x.Reset()
	assert.False(t, x.Extracted())
	assert.Empty(t, x.Infos())
	assert.Greater(t, x.Epoch(), e1)
	_, _, ok := x.IndexRange()
	assert.False(t, ok)
}
