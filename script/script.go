// Package script resolves writing direction and script for edition text.
package script

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"

	"github.com/ByLCY/scriptorium/layout"
)

// rtlScripts lists the ISO 15924 codes written right to left.
var rtlScripts = map[string]bool{
	"Arab": true,
	"Hebr": true,
	"Syrc": true,
	"Thaa": true,
	"Samr": true,
	"Mand": true,
	"Nkoo": true,
}

// IsRTL reports whether script s is written right to left.
func IsRTL(s language.Script) bool { return rtlScripts[s.String()] }

// Direction resolves the text direction of an edition language code.
// Unknown or unparsable codes are left to right.
func Direction(lang string) layout.Direction {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return layout.DirectionLTR
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return layout.DirectionLTR
	}
	s, conf := tag.Script()
	if conf == language.No {
		return layout.DirectionLTR
	}
	if IsRTL(s) {
		return layout.DirectionRTL
	}
	return layout.DirectionLTR
}

// Detector guesses the script of a text run.
type Detector interface {
	Detect(text string) (language.Script, bool)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(text string) (language.Script, bool)

// Detect implements Detector.
func (f DetectorFunc) Detect(text string) (language.Script, bool) { return f(text) }

var scriptTables = []struct {
	code  string
	table *unicode.RangeTable
}{
	{"Latn", unicode.Latin},
	{"Grek", unicode.Greek},
	{"Arab", unicode.Arabic},
	{"Hebr", unicode.Hebrew},
	{"Syrc", unicode.Syriac},
	{"Cyrl", unicode.Cyrillic},
	{"Copt", unicode.Coptic},
	{"Armn", unicode.Armenian},
	{"Geor", unicode.Georgian},
	{"Ethi", unicode.Ethiopic},
	{"Hani", unicode.Han},
}

// UnicodeDetector picks the script most letters of a run belong to.
type UnicodeDetector struct{}

// Detect implements Detector. ok is false when the run has no letters of a known script.
func (UnicodeDetector) Detect(text string) (language.Script, bool) {
	counts := make([]int, len(scriptTables))
	best, bestCount := -1, 0
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			continue
		}
		for i, st := range scriptTables {
			if unicode.Is(st.table, r) {
				counts[i]++
				if counts[i] > bestCount {
					best, bestCount = i, counts[i]
				}
				break
			}
		}
	}
	if best < 0 {
		return language.Script{}, false
	}
	s, err := language.ParseScript(scriptTables[best].code)
	if err != nil {
		return language.Script{}, false
	}
	return s, true
}

// NeutralOnly reports whether text has no strong directional character, i.e.
// it consists of punctuation, digits, spaces and symbols only.
func NeutralOnly(text string) bool {
	for i := 0; i < len(text); {
		p, size := bidi.LookupString(text[i:])
		if size == 0 {
			break
		}
		switch p.Class() {
		case bidi.L, bidi.R, bidi.AL:
			return false
		}
		i += size
	}
	return true
}

// RunDirection resolves the direction of a rendered run. Runs without strong
// characters inherit the paragraph direction; everything else goes through
// the detector and falls back to the paragraph direction when it fails.
func RunDirection(text string, paragraph layout.Direction, d Detector) layout.Direction {
	if NeutralOnly(text) {
		return paragraph
	}
	if d == nil {
		d = UnicodeDetector{}
	}
	s, ok := d.Detect(text)
	if !ok {
		return paragraph
	}
	if IsRTL(s) {
		return layout.DirectionRTL
	}
	return layout.DirectionLTR
}
