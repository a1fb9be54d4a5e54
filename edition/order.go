package edition

import "sort"

// SortSubEntries returns the sub-entries of one entry in layout order:
// unpositioned automatic sub-entries in their original order, then explicitly
// positioned ones by ascending position, then unpositioned custom ones.
// Positions of the result are rewritten to 0..n-1. The input is not modified.
func SortSubEntries(in []SubEntry) []SubEntry {
	var auto, positioned, custom []SubEntry
	for _, se := range in {
		switch {
		case se.Position != nil:
			positioned = append(positioned, se)
		case se.IsAutomatic():
			auto = append(auto, se)
		default:
			custom = append(custom, se)
		}
	}
	sort.SliceStable(positioned, func(i, j int) bool {
		return *positioned[i].Position < *positioned[j].Position
	})

	out := make([]SubEntry, 0, len(in))
	out = append(out, auto...)
	out = append(out, positioned...)
	out = append(out, custom...)
	for i := range out {
		p := i
		out[i].Position = &p
		if len(out[i].Witnesses) > 0 {
			out[i].Witnesses = append([]WitnessData(nil), out[i].Witnesses...)
		}
	}
	return out
}
