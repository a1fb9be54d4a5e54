package lemma

import "github.com/ByLCY/scriptorium/edition"

// UnknownSiglum is shown for a witness index outside the witness list.
const UnknownSiglum = "?"

// Siglum is a witness label ready for rendering.
type Siglum struct {
	Text string
	Hand edition.Hand
	// Witness is the positional witness index; nil once collapsed into a group.
	Witness   *int
	Location  string
	ForceHand bool
}

// Group reports whether the siglum stands for a sigla group.
func (s Siglum) Group() bool { return s.Witness == nil }

// ShowHand reports whether the hand number follows the siglum.
func (s Siglum) ShowHand() bool { return !s.Hand.IsPrimary() || s.ForceHand }

// CollapseSigla maps witness data to sigla by position, drops entries that
// omit their siglum, then replaces every group whose whole witness set is
// attested by a primary hand with the group siglum. Partial groups are left
// alone. The collapsed siglum takes the place of the first matched entry.
func CollapseSigla(data []edition.WitnessData, witnesses []edition.Witness, groups []edition.SiglaGroup) []Siglum {
	out := make([]Siglum, 0, len(data))
	for _, d := range data {
		if d.OmitSiglum {
			continue
		}
		idx := d.WitnessIndex
		text := UnknownSiglum
		if idx >= 0 && idx < len(witnesses) {
			text = witnesses[idx].Siglum
		}
		out = append(out, Siglum{
			Text:      text,
			Hand:      d.Hand,
			Witness:   &idx,
			Location:  d.Location,
			ForceHand: d.ForceHandDisplay,
		})
	}

	for i := range groups {
		g := &groups[i]
		set := g.Set()
		if len(set) == 0 {
			continue
		}
		var matched []int
		present := map[int]struct{}{}
		for j, s := range out {
			if s.Group() || !s.Hand.IsPrimary() {
				continue
			}
			if _, ok := set[*s.Witness]; ok {
				matched = append(matched, j)
				present[*s.Witness] = struct{}{}
			}
		}
		if len(present) != len(set) {
			continue
		}
		out[matched[0]] = Siglum{Text: g.Siglum, Hand: edition.PrimaryHand}
		drop := make(map[int]struct{}, len(matched)-1)
		for _, j := range matched[1:] {
			drop[j] = struct{}{}
		}
		kept := out[:0]
		for j, s := range out {
			if _, ok := drop[j]; !ok {
				kept = append(kept, s)
			}
		}
		out = kept
	}
	return out
}
