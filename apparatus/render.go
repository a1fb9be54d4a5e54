package apparatus

import (
	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/lemma"
	"github.com/ByLCY/scriptorium/style"
)

// Entry separator values with a special meaning.
const (
	SeparatorOff   = "off"
	SeparatorColon = "colon"
)

// Pre- and post-lemma values looked up in the string table.
const (
	LemmaAnte = "ante"
	LemmaPost = "post"
)

// words joins non-empty parts with breakable inter-word glue.
type words struct {
	s     *Session
	style []string
	items []layout.Item
}

func (w *words) add(part ...layout.Item) error {
	if len(part) == 0 {
		return nil
	}
	if len(w.items) > 0 {
		g, err := w.s.composer.Space(w.style...)
		if err != nil {
			return err
		}
		w.items = append(w.items, g)
	}
	w.items = append(w.items, part...)
	return nil
}

// typesetBucket renders all entries of a non-marginalia bucket.
func (s *Session) typesetBucket(entries []edition.Entry) ([]layout.Item, error) {
	w := &words{s: s, style: []string{style.Apparatus}}
	for i := range entries {
		if i > 0 {
			sep, err := s.composer.Run(s.sheet.String(style.StrEntrySeparator), s.direction, s.direction, style.Apparatus)
			if err != nil {
				return nil, err
			}
			w.items = append(w.items, sep)
		}
		if err := s.entry(w, &entries[i]); err != nil {
			return nil, err
		}
	}
	return w.items, nil
}

// typesetNotes renders every enabled sub-entry on its own, for the margin.
func (s *Session) typesetNotes(entries []edition.Entry) ([][]layout.Item, error) {
	var out [][]layout.Item
	for i := range entries {
		for _, se := range entries[i].Enabled() {
			w := &words{s: s, style: []string{style.Marginalia}}
			if err := s.subEntry(w, &se); err != nil {
				return nil, err
			}
			out = append(out, w.items)
		}
	}
	return out, nil
}

// entry renders pre-lemma, lemma, post-lemma, separator and sub-entries.
func (s *Session) entry(w *words, e *edition.Entry) error {
	if err := s.lemmaKeyword(w, e.PreLemma); err != nil {
		return err
	}
	lemmaItems, err := s.lemma(e)
	if err != nil {
		return err
	}
	if err := w.add(lemmaItems...); err != nil {
		return err
	}
	if err := s.lemmaKeyword(w, e.PostLemma); err != nil {
		return err
	}
	if sep := separatorText(e.Separator, s.sheet.String(style.StrLemmaSeparator)); sep != "" {
		box, err := s.composer.Run(sep, s.direction, s.direction, style.Apparatus, style.Lemma)
		if err != nil {
			return err
		}
		// the separator sticks to the lemma
		w.items = append(w.items, box)
	}
	for _, se := range e.Enabled() {
		if err := s.subEntry(w, &se); err != nil {
			return err
		}
	}
	return nil
}

func separatorText(sep, lemmaSeparator string) string {
	switch sep {
	case "":
		return lemmaSeparator
	case SeparatorOff:
		return ""
	case SeparatorColon:
		return ":"
	default:
		return sep
	}
}

func (s *Session) lemmaKeyword(w *words, v string) error {
	var text string
	switch v {
	case "":
		return nil
	case LemmaAnte:
		text = s.sheet.String(style.StrAnte)
	case LemmaPost:
		text = s.sheet.String(style.StrPost)
	default:
		text = v
	}
	box, err := s.composer.Run(text, s.direction, s.direction, style.Apparatus, style.Keyword)
	if err != nil {
		return err
	}
	return w.add(box)
}

// lemma renders the lemma of e; occurrence numbers come from the line map.
func (s *Session) lemma(e *edition.Entry) ([]layout.Item, error) {
	return s.lemmaComponents(e, lemma.Components(e, s.extractor))
}

func (s *Session) lemmaComponents(e *edition.Entry, comps []lemma.Component) ([]layout.Item, error) {
	var out []layout.Item
	for _, c := range comps {
		var (
			it  layout.Item
			err error
		)
		switch c.Kind {
		case lemma.ComponentText, lemma.ComponentSeparator:
			if c.Text == "" {
				continue
			}
			if len(out) > 0 {
				g, err := s.composer.Space(style.Apparatus)
				if err != nil {
					return nil, err
				}
				out = append(out, g)
			}
			it, err = s.composer.Run(c.Text, s.direction, layout.DirectionUnset, style.Apparatus, style.Lemma)
		case lemma.ComponentNumber:
			it, err = s.composer.Superscript(c.Text, style.Apparatus)
		default:
			s.reporter.Report(diag.Diagnostic{
				Code:    diag.UnknownLemmaComponent,
				Message: "unknown lemma component, rendering placeholder",
				Attrs:   map[string]any{"kind": c.Kind.String(), "from": e.From},
			})
			it, err = s.composer.Run(lemma.Placeholder, s.direction, s.direction, style.Apparatus, style.Lemma)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// subEntry renders one reading.
func (s *Session) subEntry(w *words, se *edition.SubEntry) error {
	base := w.style
	keyword := func(key string) error {
		// keys missing from the string table are shown literally
		text := s.sheet.String(key)
		if text == "" {
			return nil
		}
		box, err := s.composer.Run(text, s.direction, s.direction, append(append([]string(nil), base...), style.Keyword)...)
		if err != nil {
			return err
		}
		return w.add(box)
	}
	text := func() error {
		items, err := s.composer.FmtText(se.Text, s.direction, base...)
		if err != nil {
			return err
		}
		return w.add(items...)
	}

	withSigla := true
	switch se.Type {
	case edition.SubEntryVariant:
		if err := text(); err != nil {
			return err
		}
	case edition.SubEntryOmission:
		if err := keyword(style.StrOmission); err != nil {
			return err
		}
	case edition.SubEntryAddition:
		if err := keyword(style.StrAddition); err != nil {
			return err
		}
		if err := text(); err != nil {
			return err
		}
	case edition.SubEntryFullCustom, edition.SubEntryAutoFoliation:
		if se.Keyword != "" {
			if err := keyword(se.Keyword); err != nil {
				return err
			}
		}
		if !s.isOmissionKeyword(se.Keyword) && !se.Text.IsEmpty() {
			if err := text(); err != nil {
				return err
			}
		}
		withSigla = len(se.Witnesses) > 0 && se.Type != edition.SubEntryAutoFoliation
	default:
		s.reporter.Report(diag.Diagnostic{
			Code:    diag.UnknownSubEntryType,
			Message: "unknown sub-entry type, rendering its text only",
			Attrs:   map[string]any{"type": se.Type.String()},
		})
		if err := text(); err != nil {
			return err
		}
		withSigla = false
	}
	if !withSigla {
		return nil
	}
	return s.sigla(w, se.Witnesses)
}

func (s *Session) isOmissionKeyword(k string) bool {
	return k != "" && (k == style.StrOmission || k == s.sheet.String(style.StrOmission))
}

// sigla renders collapsed sigla; non-primary or forced hands get a superscript number.
func (s *Session) sigla(w *words, data []edition.WitnessData) error {
	var witnesses []edition.Witness
	var groups []edition.SiglaGroup
	if s.edition != nil {
		witnesses, groups = s.edition.Witnesses, s.edition.SiglaGroups
	}
	for _, d := range data {
		if !d.OmitSiglum && (d.WitnessIndex < 0 || d.WitnessIndex >= len(witnesses)) {
			s.reporter.Report(diag.Diagnostic{
				Code:    diag.UnknownWitness,
				Message: "witness index outside the witness list",
				Attrs:   map[string]any{"witness": d.WitnessIndex},
			})
		}
	}
	styles := append(append([]string(nil), w.style...), style.Sigla)
	for _, sg := range lemma.CollapseSigla(data, witnesses, groups) {
		box, err := s.composer.Run(sg.Text, s.direction, s.direction, styles...)
		if err != nil {
			return err
		}
		part := []layout.Item{box}
		if sg.ShowHand() {
			sup, err := s.composer.Superscript(sg.Hand.Label(), w.style...)
			if err != nil {
				return err
			}
			part = append(part, sup)
		}
		if err := w.add(part...); err != nil {
			return err
		}
	}
	return nil
}
