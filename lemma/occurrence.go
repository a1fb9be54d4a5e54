package lemma

// OccurrenceSource reports, for a logical main-text index, which occurrence of
// its text the token is on its physical line and how many there are.
// ok is false when the index is unknown or the token carries no text.
type OccurrenceSource interface {
	Occurrences(index int) (occ, total int, ok bool)
}

// Occurrence returns the superscript number that disambiguates the span
// [from, to] on its line, or 0 when no number is needed.
//
// An unknown from counts as occurrence 1 of 1. Tokens inside the span that
// carry no text are skipped; any text token unique on its line makes the
// whole span unambiguous.
func Occurrence(src OccurrenceSource, from, to int) int {
	if src == nil {
		return 0
	}
	occ, total, ok := src.Occurrences(from)
	if !ok || total <= 1 {
		return 0
	}
	shown := occ
	for i := from + 1; i <= to; i++ {
		o, t, ok := src.Occurrences(i)
		if !ok {
			continue
		}
		if t <= 1 {
			return 0
		}
		if o < shown {
			shown = o
		}
	}
	return shown
}
