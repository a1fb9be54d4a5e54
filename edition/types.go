// Package edition holds the typed containers of a logical critical edition:
// the main-text token stream, the apparatuses annotating it, and the witnesses
// and sigla groups the apparatuses refer to.
package edition

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ApparatusMarginalia is the apparatus type laid out per physical line in the margin.
const ApparatusMarginalia = "marginalia"

// Edition is a fully built logical edition.
//
// Witness order defines the siglum lookup index: WitnessData.WitnessIndex is a
// position in Witnesses, not an id.
type Edition struct {
	Lang             string            `yaml:"lang" json:"lang"`
	MainText         []Token           `yaml:"mainText" json:"mainText"`
	Apparatuses      []Apparatus       `yaml:"apparatuses" json:"apparatuses"`
	Witnesses        []Witness         `yaml:"witnesses" json:"witnesses"`
	SiglaGroups      []SiglaGroup      `yaml:"siglaGroups,omitempty" json:"siglaGroups,omitempty"`
	FoliationChanges []FoliationChange `yaml:"foliationChanges,omitempty" json:"foliationChanges,omitempty"`
}

// Token is one main-text token.
type Token struct {
	Type TokenType `yaml:"type" json:"type"`
	Text FmtText   `yaml:"text,omitempty" json:"text,omitempty"`
	// Style is the paragraph style tag; meaningful only on paragraph ends.
	Style string `yaml:"style,omitempty" json:"style,omitempty"`
	// OriginalIndex is the position in the logical sequence, assigned at compile time.
	OriginalIndex int `yaml:"-" json:"originalIndex"`
}

// Apparatus is one annotation stream over the main text.
type Apparatus struct {
	Type    string  `yaml:"type" json:"type"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

// IsMarginalia reports whether the apparatus is laid out in the margin.
func (a *Apparatus) IsMarginalia() bool { return a.Type == ApparatusMarginalia }

// Entry annotates the inclusive main-text span [From, Last()].
type Entry struct {
	From int `yaml:"from" json:"from"`
	// To is nil for single-token or pre-text annotations.
	To         *int       `yaml:"to,omitempty" json:"to,omitempty"`
	PreLemma   string     `yaml:"preLemma,omitempty" json:"preLemma,omitempty"`
	PostLemma  string     `yaml:"postLemma,omitempty" json:"postLemma,omitempty"`
	Lemma      string     `yaml:"lemma,omitempty" json:"lemma,omitempty"`
	LemmaText  string     `yaml:"lemmaText,omitempty" json:"lemmaText,omitempty"`
	Separator  string     `yaml:"separator,omitempty" json:"separator,omitempty"`
	SubEntries []SubEntry `yaml:"subEntries" json:"subEntries"`
}

// Last returns the last annotated index.
func (e *Entry) Last() int {
	if e.To == nil || *e.To < e.From {
		return e.From
	}
	return *e.To
}

// SingleToken reports whether the entry spans exactly one token.
func (e *Entry) SingleToken() bool { return e.Last() == e.From }

// Enabled returns the enabled sub-entries in layout order.
func (e *Entry) Enabled() []SubEntry {
	out := make([]SubEntry, 0, len(e.SubEntries))
	for _, se := range SortSubEntries(e.SubEntries) {
		if se.Enabled {
			out = append(out, se)
		}
	}
	return out
}

// HasEnabled reports whether at least one sub-entry is enabled.
func (e *Entry) HasEnabled() bool {
	for _, se := range e.SubEntries {
		if se.Enabled {
			return true
		}
	}
	return false
}

// SubEntry is one reading attached to a lemma.
type SubEntry struct {
	Type      SubEntryType  `yaml:"type" json:"type"`
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Text      FmtText       `yaml:"text,omitempty" json:"text,omitempty"`
	Witnesses []WitnessData `yaml:"witnessData,omitempty" json:"witnessData,omitempty"`
	// Position is nil when the sub-entry has no explicit position.
	Position *int   `yaml:"position,omitempty" json:"position,omitempty"`
	Keyword  string `yaml:"keyword,omitempty" json:"keyword,omitempty"`
}

// IsAutomatic reports whether the sub-entry was generated from the collation
// rather than written by the editor.
func (s *SubEntry) IsAutomatic() bool { return s.Type != SubEntryFullCustom }

// HasRealFoliationChange reports whether any witness marks a real foliation change.
func (s *SubEntry) HasRealFoliationChange() bool {
	for _, w := range s.Witnesses {
		if w.RealFoliationChange {
			return true
		}
	}
	return false
}

// Hand identifies which hand of a witness attests a reading.
type Hand int

// PrimaryHand is the main scribe of a witness.
const PrimaryHand Hand = 0

// IsPrimary reports whether h is the primary hand.
func (h Hand) IsPrimary() bool { return h == PrimaryHand }

// Label is the number shown after a siglum for non-primary hands.
func (h Hand) Label() string { return fmt.Sprintf("%d", int(h)+1) }

// WitnessData attests a sub-entry in one witness.
type WitnessData struct {
	WitnessIndex        int    `yaml:"witnessIndex" json:"witnessIndex"`
	Hand                Hand   `yaml:"hand,omitempty" json:"hand,omitempty"`
	Location            string `yaml:"location,omitempty" json:"location,omitempty"`
	ForceHandDisplay    bool   `yaml:"forceHandDisplay,omitempty" json:"forceHandDisplay,omitempty"`
	OmitSiglum          bool   `yaml:"omitSiglum,omitempty" json:"omitSiglum,omitempty"`
	RealFoliationChange bool   `yaml:"realFoliationChange,omitempty" json:"realFoliationChange,omitempty"`
}

// Witness describes one witness.
type Witness struct {
	Siglum string `yaml:"siglum" json:"siglum"`
	Title  string `yaml:"title,omitempty" json:"title,omitempty"`
}

// SiglaGroup stands in for a fixed witness set when all of it is attested.
type SiglaGroup struct {
	Siglum    string `yaml:"siglum" json:"siglum"`
	Witnesses []int  `yaml:"witnesses" json:"witnesses"`
}

// Set returns the distinct witness indices of the group.
func (g *SiglaGroup) Set() map[int]struct{} {
	set := make(map[int]struct{}, len(g.Witnesses))
	for _, w := range g.Witnesses {
		set[w] = struct{}{}
	}
	return set
}

// FoliationChange records where a witness turns a folio within the main text.
type FoliationChange struct {
	WitnessIndex  int    `yaml:"witnessIndex" json:"witnessIndex"`
	MainTextIndex int    `yaml:"mainTextIndex" json:"mainTextIndex"`
	Foliation     string `yaml:"foliation" json:"foliation"`
}

// FmtRun is a run of uniformly formatted text.
type FmtRun struct {
	Text        string `yaml:"text" json:"text"`
	Bold        bool   `yaml:"bold,omitempty" json:"bold,omitempty"`
	Italic      bool   `yaml:"italic,omitempty" json:"italic,omitempty"`
	Superscript bool   `yaml:"superscript,omitempty" json:"superscript,omitempty"`
	Subscript   bool   `yaml:"subscript,omitempty" json:"subscript,omitempty"`
}

// FmtText is formatted text. In YAML/JSON it may also be given as a plain string.
type FmtText []FmtRun

// Plain returns the text without formatting.
func (f FmtText) Plain() string {
	var b strings.Builder
	for _, r := range f {
		b.WriteString(r.Text)
	}
	return b.String()
}

// IsEmpty reports whether the text has no visible characters.
func (f FmtText) IsEmpty() bool { return strings.TrimSpace(f.Plain()) == "" }

// Plain builds an unformatted FmtText.
func Plain(s string) FmtText {
	if s == "" {
		return nil
	}
	return FmtText{{Text: s}}
}

// UnmarshalYAML accepts either a sequence of runs or a scalar string.
func (f *FmtText) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*f = Plain(value.Value)
		return nil
	}
	var runs []FmtRun
	if err := value.Decode(&runs); err != nil {
		return err
	}
	*f = runs
	return nil
}
