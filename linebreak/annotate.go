package linebreak

import "github.com/ByLCY/scriptorium/layout"

// annotateOccurrences numbers repeated texts on one line: the n-th primitive
// carrying text t gets OccurrenceInLine n and TotalOccurrencesInLine equal
// to the number of primitives carrying t. items must be owned by the caller.
func annotateOccurrences(items []layout.Item) {
	var sources []*layout.Provenance
	totals := map[string]int{}
	layout.Walk(items, func(it *layout.Item) bool {
		if src := it.Source(); src != nil && src.Text != "" {
			sources = append(sources, src)
			totals[src.Text]++
		}
		return true
	})
	seen := map[string]int{}
	for _, src := range sources {
		seen[src.Text]++
		src.OccurrenceInLine = seen[src.Text]
		src.TotalOccurrencesInLine = totals[src.Text]
	}
}

// mergeBoxes folds runs of adjacent boxes sharing font, direction and raise
// into one box whose metadata keeps the originals.
func mergeBoxes(items []layout.Item) []layout.Item {
	out := make([]layout.Item, 0, len(items))
	i := 0
	for i < len(items) {
		j := i + 1
		for j < len(items) && mergeable(items[i], items[j]) {
			j++
		}
		if j-i < 2 {
			out = append(out, items[i])
			i++
			continue
		}
		merged := layout.Item{
			Kind:      layout.KindBox,
			Raise:     items[i].Raise,
			Direction: items[i].Direction,
			Meta:      &layout.Metadata{Merged: append([]layout.Item(nil), items[i:j]...)},
		}
		if items[i].Font != nil {
			f := *items[i].Font
			merged.Font = &f
		}
		for _, it := range items[i:j] {
			merged.Text += it.Text
			merged.Width += it.Width
		}
		out = append(out, merged)
		i = j
	}
	return out
}

func mergeable(a, b layout.Item) bool {
	if !a.IsBox() || !b.IsBox() || a.Text == "" || b.Text == "" || a.Tag != "" || b.Tag != "" {
		return false
	}
	if a.Direction != b.Direction || a.Raise != b.Raise {
		return false
	}
	if a.Font == nil || b.Font == nil {
		return a.Font == b.Font
	}
	return *a.Font == *b.Font
}
