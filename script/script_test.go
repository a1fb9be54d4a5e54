package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/ByLCY/scriptorium/layout"
)

func TestDirectionFromLanguage(t *testing.T) {
	assert.Equal(t, layout.DirectionRTL, Direction("ar"))
	assert.Equal(t, layout.DirectionRTL, Direction("he"))
	assert.Equal(t, layout.DirectionLTR, Direction("la"))
	assert.Equal(t, layout.DirectionLTR, Direction(""))
	assert.Equal(t, layout.DirectionLTR, Direction("not a language tag"))
}

func TestUnicodeDetector(t *testing.T) {
	s, ok := UnicodeDetector{}.Detect("كتاب")
	assert.True(t, ok)
	assert.Equal(t, "Arab", s.String())

	s, ok = UnicodeDetector{}.Detect("λόγος")
	assert.True(t, ok)
	assert.Equal(t, "Grek", s.String())

	_, ok = UnicodeDetector{}.Detect("12, 13.")
	assert.False(t, ok)
}

func TestRunDirection(t *testing.T) {
	assert.Equal(t, layout.DirectionRTL, RunDirection(".,;", layout.DirectionRTL, nil), "punctuation inherits")
	assert.Equal(t, layout.DirectionLTR, RunDirection("12", layout.DirectionLTR, nil))
	assert.Equal(t, layout.DirectionRTL, RunDirection("שלום", layout.DirectionLTR, nil))
	assert.Equal(t, layout.DirectionLTR, RunDirection("verbum", layout.DirectionRTL, nil))

	failing := DetectorFunc(func(string) (language.Script, bool) { return language.Script{}, false })
	assert.Equal(t, layout.DirectionRTL, RunDirection("verbum", layout.DirectionRTL, failing), "detector failure falls back")
}
