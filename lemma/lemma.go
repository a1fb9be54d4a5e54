// Package lemma holds the pure helpers behind apparatus lemmata: choosing how
// a lemma is shown, disambiguating repeated words on a line and collapsing
// witness sigla into group sigla.
package lemma

import (
	"strconv"
	"strings"

	"github.com/ByLCY/scriptorium/edition"
)

// Mode is how a lemma is rendered.
type Mode int

const (
	// ModeCustom renders Entry.Lemma literally.
	ModeCustom Mode = iota
	// ModeFull renders the whole lemma text.
	ModeFull
	// ModeShortened renders first word, separator, last word.
	ModeShortened
)

func (m Mode) String() string {
	switch m {
	case ModeCustom:
		return "custom"
	case ModeFull:
		return "full"
	case ModeShortened:
		return "shortened"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Lemma values that select a shortened separator instead of a literal override.
const (
	LemmaDash     = "dash"
	LemmaEllipsis = "ellipsis"
)

// Separators between the first and last word of a shortened lemma.
const (
	SeparatorDash     = "–"
	SeparatorEllipsis = "..."
)

// Placeholder is shown for a lemma component that cannot be rendered.
const Placeholder = "Lemma???"

// maxFullWords is the longest lemma text rendered in full.
const maxFullWords = 3

// Choice is the outcome of Select.
type Choice struct {
	Mode Mode
	// Text is the literal override (custom) or the whole phrase (full).
	Text      string
	First     string
	Last      string
	Separator string
}

// Select decides how a lemma is shown. Any lemma value other than "",
// "dash" and "ellipsis" is a literal override and lemmaText is ignored.
func Select(lemma, lemmaText string) Choice {
	var sep string
	switch lemma {
	case "", LemmaDash:
		sep = SeparatorDash
	case LemmaEllipsis:
		sep = SeparatorEllipsis
	default:
		return Choice{Mode: ModeCustom, Text: lemma}
	}
	words := strings.Fields(lemmaText)
	if len(words) <= maxFullWords {
		return Choice{Mode: ModeFull, Text: strings.Join(words, " ")}
	}
	return Choice{
		Mode:      ModeShortened,
		First:     words[0],
		Last:      words[len(words)-1],
		Separator: sep,
	}
}

// ComponentKind tags a rendered piece of a lemma.
type ComponentKind int

const (
	ComponentText ComponentKind = iota
	ComponentSeparator
	// ComponentNumber is an occurrence number, set as a superscript.
	ComponentNumber
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentText:
		return "text"
	case ComponentSeparator:
		return "separator"
	case ComponentNumber:
		return "number"
	default:
		return "component(" + strconv.Itoa(int(k)) + ")"
	}
}

// Component is one piece of a rendered lemma.
type Component struct {
	Kind ComponentKind
	Text string
}

// Components turns the lemma of e into renderable pieces. Occurrence numbers
// are looked up in src; a nil src shows none.
func Components(e *edition.Entry, src OccurrenceSource) []Component {
	c := Select(e.Lemma, e.LemmaText)
	switch c.Mode {
	case ModeCustom:
		return []Component{{Kind: ComponentText, Text: c.Text}}
	case ModeFull:
		out := []Component{{Kind: ComponentText, Text: c.Text}}
		return appendNumber(out, Occurrence(src, e.From, e.Last()))
	default:
		out := []Component{{Kind: ComponentText, Text: c.First}}
		out = appendNumber(out, Occurrence(src, e.From, e.From))
		out = append(out,
			Component{Kind: ComponentSeparator, Text: c.Separator},
			Component{Kind: ComponentText, Text: c.Last},
		)
		return appendNumber(out, Occurrence(src, e.Last(), e.Last()))
	}
}

func appendNumber(out []Component, n int) []Component {
	if n <= 0 {
		return out
	}
	return append(out, Component{Kind: ComponentNumber, Text: strconv.Itoa(n)})
}
